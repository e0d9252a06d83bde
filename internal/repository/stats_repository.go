package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// StatsRepo holds the aggregate queries behind the stats, profile and
// admin endpoints.  Read-only.
type StatsRepo struct{ DB *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{DB: db} }

// SubjectCounts groups the user's cards by subject, most populous first.
func (r *StatsRepo) SubjectCounts(ctx context.Context, userID uint64) ([]model.SubjectCount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT subject, COUNT(*) FROM flashcards
		 WHERE user_id = ? GROUP BY subject ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SubjectCount
	for rows.Next() {
		var sc model.SubjectCount
		if err := rows.Scan(&sc.Subject, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ReviewedToday counts cards the user reviewed today.
func (r *StatsRepo) ReviewedToday(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flashcards
		 WHERE user_id = ? AND DATE(last_reviewed) = CURDATE()`, userID).Scan(&n)
	return n, err
}

// ReviewStreak computes the run of consecutive review days ending today
// from the distinct last_reviewed dates, newest first.
func (r *StatsRepo) ReviewStreak(ctx context.Context, userID uint64) (int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT DATE(last_reviewed) FROM flashcards
		 WHERE user_id = ? AND last_reviewed IS NOT NULL
		 ORDER BY 1 DESC LIMIT 30`, userID)
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
	return consecutiveDays(dates, time.Now().UTC()), nil
}

// MostReviewedSubject returns the subject with the highest cumulative
// review count, or "" when the user has no cards.
func (r *StatsRepo) MostReviewedSubject(ctx context.Context, userID uint64) (string, error) {
	var subject string
	err := r.DB.QueryRowContext(ctx,
		`SELECT subject FROM flashcards WHERE user_id = ?
		 GROUP BY subject ORDER BY SUM(times_reviewed) DESC LIMIT 1`,
		userID).Scan(&subject)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return subject, err
}

// RecentActivity lists the user's latest card creations for the profile
// page.
func (r *StatsRepo) RecentActivity(ctx context.Context, userID uint64, limit int) ([]map[string]any, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT created_at, subject FROM flashcards
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var at time.Time
		var subject string
		if err := rows.Scan(&at, &subject); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"created_at":    at,
			"activity_type": "flashcard",
			"subject":       subject,
		})
	}
	return out, rows.Err()
}

// AdminStats aggregates system-wide counters.
type AdminStats struct {
	TotalUsers      int                  `json:"total_users"`
	TotalFlashcards int                  `json:"total_flashcards"`
	ActiveUsers7d   int                  `json:"active_users_7d"`
	PopularSubjects []model.SubjectCount `json:"popular_subjects"`
}

// Admin collects the system-wide stats in one pass.
func (r *StatsRepo) Admin(ctx context.Context) (AdminStats, error) {
	var s AdminStats
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users").Scan(&s.TotalUsers); err != nil {
		return s, err
	}
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM flashcards").Scan(&s.TotalFlashcards); err != nil {
		return s, err
	}
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM flashcards
		 WHERE created_at >= DATE_SUB(NOW(), INTERVAL 7 DAY)`).Scan(&s.ActiveUsers7d); err != nil {
		return s, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT subject, COUNT(*) FROM flashcards
		 GROUP BY subject ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc model.SubjectCount
		if err := rows.Scan(&sc.Subject, &sc.Count); err != nil {
			return s, err
		}
		s.PopularSubjects = append(s.PopularSubjects, sc)
	}
	return s, rows.Err()
}
