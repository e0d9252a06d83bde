package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table.  The table is
// the revocation ledger for refresh credentials: one row per issued token,
// keyed by the jti claim embedded in the JWT.  A row that cannot be found
// is treated the same as a revoked one.
//
// Fields:
//
//	ID        – primary key identifier.
//	JTI       – unique token id embedded in the refresh JWT.
//	UserID    – owner of the token.
//	Revoked   – set once at logout; never cleared.
//	ExpiresAt – expiration timestamp of the token.
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    `json:"id"`
	JTI       string    `json:"jti"`
	UserID    uint64    `json:"user_id"`
	Revoked   bool      `json:"revoked"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
