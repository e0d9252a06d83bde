package model

import "time"

// Todo mirrors the `todos` table.  DueDate is a plain date; priority is
// one of low/medium/high.
type Todo struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     string    `json:"due_date"`
	Priority    string    `json:"priority"`
	Subject     string    `json:"subject"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimetableEntry mirrors the `timetable_entries` table.  Times are stored
// as MySQL TIME values and surfaced as "HH:MM:SS" strings.
type TimetableEntry struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Subject   string    `json:"subject"`
	DayOfWeek string    `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
