package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// StudyRepo tracks study streaks and logged study sessions.
type StudyRepo struct{ DB *sql.DB }

func NewStudyRepo(db *sql.DB) *StudyRepo { return &StudyRepo{DB: db} }

// TouchStreak records study activity for today and recomputes the user's
// streak.  The study_streaks table has a unique (user_id, study_date) key
// so concurrent touches on the same day collapse into one row.  The streak
// is the run of consecutive days ending today, walked newest first over
// the recorded dates; best_streak only ever grows.
func (r *StudyRepo) TouchStreak(ctx context.Context, userID uint64) (int, error) {
	today := time.Now().UTC().Format("2006-01-02")
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO study_streaks (user_id, study_date, cards_studied)
		 VALUES (?,?,1)
		 ON DUPLICATE KEY UPDATE cards_studied = cards_studied + 1`,
		userID, today)
	if err != nil {
		return 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT study_date FROM study_streaks
		 WHERE user_id = ? ORDER BY study_date DESC LIMIT 365`, userID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return 0, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	streak := consecutiveDays(dates, time.Now().UTC())
	_, err = r.DB.ExecContext(ctx,
		`UPDATE users
		 SET current_streak = ?,
		     best_streak = GREATEST(best_streak, ?),
		     last_streak_date = ?,
		     last_activity = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		streak, streak, today, userID)
	if err != nil {
		return 0, err
	}
	return streak, nil
}

// consecutiveDays counts the run of consecutive days ending at now's date.
// dates must be sorted newest first.
func consecutiveDays(dates []time.Time, now time.Time) int {
	streak := 0
	cur := now.Truncate(24 * time.Hour)
	for _, d := range dates {
		if !d.Truncate(24 * time.Hour).Equal(cur) {
			break
		}
		streak++
		cur = cur.AddDate(0, 0, -1)
	}
	return streak
}

// LogSession records one study sitting.
func (r *StudyRepo) LogSession(ctx context.Context, s *model.StudySession) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO study_sessions (user_id, subject, flashcards_studied, session_duration_minutes)
		 VALUES (?,?,?,?)`,
		s.UserID, s.Subject, s.FlashcardsCount, s.DurationMinutes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
