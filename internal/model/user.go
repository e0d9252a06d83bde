package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The gamification counters (xp, level, streaks, total_cards) live
// directly on the row so the profile endpoint can return them with a
// single query.
//
// Fields:
//
//	ID             – primary key identifier of the user.
//	Username       – unique display name (case-sensitive).
//	Email          – unique email address, stored lowercased.
//	PasswordHash   – bcrypt hashed password; never serialized.
//	XP             – accumulated experience points.
//	Level          – derived level (every 100 XP is one level).
//	CurrentStreak  – consecutive study days up to today.
//	BestStreak     – highest streak ever reached.
//	TotalCards     – lifetime count of flashcards created.
//	LastActivity   – timestamp of the last study action (nullable).
//	LastStreakDate – date the streak was last advanced (nullable).
//	CreatedAt      – timestamp of creation.
//	UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	XP             int        `json:"xp"`
	Level          int        `json:"level"`
	CurrentStreak  int        `json:"current_streak"`
	BestStreak     int        `json:"best_streak"`
	TotalCards     int        `json:"total_cards"`
	LastActivity   *time.Time `json:"last_activity,omitempty"`
	LastStreakDate *time.Time `json:"last_streak_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
