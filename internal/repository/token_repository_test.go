package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StevenOyar/vibe-code/internal/repository"
)

func newTokenRepo(t *testing.T) (*repository.TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewTokenRepo(db), mock
}

func TestTokenStore(t *testing.T) {
	repo, mock := newTokenRepo(t)
	exp := time.Now().Add(30 * 24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO refresh_tokens (jti, user_id, expires_at) VALUES (?,?,?)")).
		WithArgs("jti-1", uint64(9), exp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Store(context.Background(), "jti-1", 9, exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRevokedKnownToken(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs("jti-live").
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(false))

	assert.False(t, repo.IsRevoked(context.Background(), "jti-live"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRevokedRevokedToken(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs("jti-dead").
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}).AddRow(true))

	assert.True(t, repo.IsRevoked(context.Background(), "jti-dead"))
}

func TestIsRevokedMissingRowFailsClosed(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs("jti-unknown").
		WillReturnRows(sqlmock.NewRows([]string{"revoked"}))

	// No ledger row means the token is treated as revoked.
	assert.True(t, repo.IsRevoked(context.Background(), "jti-unknown"))
}

func TestIsRevokedQueryErrorFailsClosed(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT revoked FROM refresh_tokens WHERE jti=? LIMIT 1")).
		WithArgs("jti-any").
		WillReturnError(errors.New("connection reset"))

	assert.True(t, repo.IsRevoked(context.Background(), "jti-any"))
}

func TestRevokeIdempotent(t *testing.T) {
	repo, mock := newTokenRepo(t)

	// Second revoke touches zero rows but still succeeds.
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE refresh_tokens SET revoked=TRUE WHERE jti=?")).
		WithArgs("jti-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE refresh_tokens SET revoked=TRUE WHERE jti=?")).
		WithArgs("jti-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Revoke(context.Background(), "jti-1"))
	require.NoError(t, repo.Revoke(context.Background(), "jti-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM refresh_tokens WHERE expires_at < NOW() OR revoked = TRUE")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
