package repository

import (
	"context"
	"database/sql"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// FlashcardRepo encapsulates all database queries related to flashcards.
type FlashcardRepo struct{ DB *sql.DB }

func NewFlashcardRepo(db *sql.DB) *FlashcardRepo { return &FlashcardRepo{DB: db} }

// CreateBatch inserts the given cards for one user inside a transaction so
// a partial batch never lands.  Each card's ID is populated on success.
func (r *FlashcardRepo) CreateBatch(ctx context.Context, userID uint64, subject, notes string, cards []*model.Flashcard) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, fc := range cards {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO flashcards (user_id, subject, notes, question, answer, difficulty)
			 VALUES (?,?,?,?,?,?)`,
			userID, subject, notes, fc.Question, fc.Answer, fc.Difficulty)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		fc.ID = uint64(id)
		fc.UserID = userID
		fc.Subject = subject
	}
	return tx.Commit()
}

// ListByUser returns the user's cards newest first, optionally filtered by
// subject, along with the total count for pagination.
func (r *FlashcardRepo) ListByUser(ctx context.Context, userID uint64, subject string, limit, offset int) ([]*model.Flashcard, int, error) {
	q := `SELECT id, subject, notes, question, answer, difficulty,
	             times_reviewed, last_reviewed, created_at, updated_at
	      FROM flashcards WHERE user_id = ?`
	countQ := "SELECT COUNT(*) FROM flashcards WHERE user_id = ?"
	args := []any{userID}
	countArgs := []any{userID}
	if subject != "" && subject != "all" {
		q += " AND subject = ?"
		countQ += " AND subject = ?"
		args = append(args, subject)
		countArgs = append(countArgs, subject)
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Flashcard
	for rows.Next() {
		fc := &model.Flashcard{UserID: userID}
		var notes sql.NullString
		if err := rows.Scan(&fc.ID, &fc.Subject, &notes, &fc.Question, &fc.Answer,
			&fc.Difficulty, &fc.TimesReviewed, &fc.LastReviewed,
			&fc.CreatedAt, &fc.UpdatedAt); err != nil {
			return nil, 0, err
		}
		fc.Notes = notes.String
		out = append(out, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Random returns up to n random cards for a study session.
func (r *FlashcardRepo) Random(ctx context.Context, userID uint64, n int) ([]*model.Flashcard, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, subject, question, answer, difficulty
		 FROM flashcards WHERE user_id = ? ORDER BY RAND() LIMIT ?`,
		userID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Flashcard
	for rows.Next() {
		fc := &model.Flashcard{UserID: userID}
		if err := rows.Scan(&fc.ID, &fc.Subject, &fc.Question, &fc.Answer, &fc.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// Delete removes the card only when it belongs to the user.
func (r *FlashcardRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM flashcards WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFlashcardNotFound
	}
	return nil
}

// MarkReviewed bumps the review counter and timestamps for an owned card.
func (r *FlashcardRepo) MarkReviewed(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE flashcards
		 SET times_reviewed = times_reviewed + 1,
		     last_reviewed = CURRENT_TIMESTAMP,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFlashcardNotFound
	}
	return nil
}

// CountByUser returns the user's lifetime card count.
func (r *FlashcardRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM flashcards WHERE user_id=?", userID).Scan(&n)
	return n, err
}

// CountTodayBySubject counts cards the user created today in a subject,
// used by the milestone check.
func (r *FlashcardRepo) CountTodayBySubject(ctx context.Context, userID uint64, subject string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flashcards
		 WHERE user_id=? AND subject=? AND DATE(created_at)=CURDATE()`,
		userID, subject).Scan(&n)
	return n, err
}

// DeleteOrphanedGuestCards removes guest cards older than 30 days, part of
// the admin cleanup sweep.
func (r *FlashcardRepo) DeleteOrphanedGuestCards(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM flashcards
		 WHERE user_id IS NULL AND created_at < DATE_SUB(NOW(), INTERVAL 30 DAY)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
