package model

import "time"

// Flashcard mirrors the `flashcards` table.  UserID is nullable in the
// schema (guest cards are kept until a maintenance sweep) but every API
// path in this service writes cards for an authenticated user.
type Flashcard struct {
	ID            uint64     `json:"id"`
	UserID        uint64     `json:"user_id,omitempty"`
	Subject       string     `json:"subject"`
	Notes         string     `json:"notes,omitempty"`
	Question      string     `json:"question"`
	Answer        string     `json:"answer"`
	Difficulty    string     `json:"difficulty"`
	TimesReviewed int        `json:"times_reviewed"`
	LastReviewed  *time.Time `json:"last_reviewed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StudySession mirrors the `study_sessions` table and records one sitting
// of flashcard review for analytics.
type StudySession struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	Subject         string    `json:"subject"`
	FlashcardsCount int       `json:"flashcards_studied"`
	DurationMinutes int       `json:"session_duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubjectCount is a per-subject aggregate used by the stats and profile
// endpoints.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}
