package repository

import (
	"context"
	"database/sql"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// TimetableRepo encapsulates all database queries related to timetable
// entries.
type TimetableRepo struct{ DB *sql.DB }

func NewTimetableRepo(db *sql.DB) *TimetableRepo { return &TimetableRepo{DB: db} }

// Create inserts a timetable entry and returns its ID.
func (r *TimetableRepo) Create(ctx context.Context, e *model.TimetableEntry) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO timetable_entries (user_id, subject, day_of_week, start_time, end_time, notes)
		 VALUES (?,?,?,?,?,?)`,
		e.UserID, e.Subject, e.DayOfWeek, e.StartTime, e.EndTime, e.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns entries in weekday order, then start time.
func (r *TimetableRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.TimetableEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, subject, day_of_week, start_time, end_time, notes, created_at, updated_at
		 FROM timetable_entries WHERE user_id = ?
		 ORDER BY FIELD(day_of_week,'Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'),
		          start_time`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TimetableEntry
	for rows.Next() {
		e := &model.TimetableEntry{UserID: userID}
		var notes sql.NullString
		if err := rows.Scan(&e.ID, &e.Subject, &e.DayOfWeek, &e.StartTime,
			&e.EndTime, &notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Notes = notes.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the entry only when it belongs to the user.
func (r *TimetableRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM timetable_entries WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
