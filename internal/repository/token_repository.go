package repository

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// TokenRepo is the revocation ledger for refresh tokens, keyed by the jti
// claim embedded in each refresh JWT.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts the ledger row for a freshly issued refresh token.  The
// jti column is unique, and a jti is never reissued, so conflicting
// inserts cannot happen in practice; any failure here propagates so login
// does not hand out a refresh token without its ledger row.
func (r *TokenRepo) Store(ctx context.Context, jti string, userID uint64, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (jti, user_id, expires_at) VALUES (?,?,?)",
		jti, userID, exp)
	return err
}

// IsRevoked reports whether the refresh token with the given jti may no
// longer be used.  Fail closed: a jti with no ledger row is revoked, and a
// lookup error is revoked too.  Absence of evidence is never trust, and no
// retry is attempted; the caller gets a plain 401.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) bool {
	var revoked bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1", jti).Scan(&revoked)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("token repo: revocation lookup for %s failed: %v", jti, err)
		}
		return true
	}
	return revoked
}

// Revoke marks the token as revoked.  Idempotent: revoking an already
// revoked or unknown jti affects zero rows and is not an error.
func (r *TokenRepo) Revoke(ctx context.Context, jti string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked=TRUE WHERE jti=?", jti)
	return err
}

// DeleteExpired removes rows that are past their expiry or already
// revoked.  Purely storage hygiene; the validation path never depends on
// this sweep having run.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < NOW() OR revoked = TRUE")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
