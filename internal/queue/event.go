// Package queue defines message payloads exchanged over the message broker.
package queue

// StudyActivityEvent is published whenever a user does something that
// advances their progress: saving cards, finishing a review, completing
// a todo.  It carries enough context for downstream consumers to log or
// feed analytics without querying the primary database.
type StudyActivityEvent struct {
	UserID     uint64 `json:"user_id"`
	Activity   string `json:"activity"`
	Subject    string `json:"subject,omitempty"`
	CardCount  int    `json:"card_count,omitempty"`
	XPGained   int    `json:"xp_gained,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
