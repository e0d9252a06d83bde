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

func newUserRepo(t *testing.T) (*repository.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewUserRepo(db), mock
}

func userRows(id uint64, username, email, hash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "xp", "level",
		"current_streak", "best_streak", "total_cards", "last_activity",
		"last_streak_date", "created_at", "updated_at",
	}).AddRow(id, username, email, hash, 120, 2, 3, 5, 40, now, now, now, now)
}

func TestUserCreate(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)")).
		WithArgs("alice", "alice@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), "alice", "Alice@Example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "alice", "alice@example.com", "hash")
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

	_, err := repo.Create(context.Background(), "alice", "other@example.com", "hash")
	assert.ErrorIs(t, err, repository.ErrUsernameExists)
}

func TestGetByUsernameOrEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM users WHERE username=\\? OR email=\\? LIMIT 1").
		WithArgs("Alice@Example.com", "alice@example.com").
		WillReturnRows(userRows(5, "alice", "alice@example.com", "hash"))

	u, err := repo.GetByUsernameOrEmail(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, 120, u.XP)
}

func TestGetByUsernameOrEmailNotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM users").
		WithArgs("nobody", "nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByUsernameOrEmail(context.Background(), "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestAddXPComputesLevel(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT xp FROM users WHERE id=? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"xp"}).AddRow(95))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE users SET xp=?, level=? WHERE id=?")).
		WithArgs(103, 2, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO xp_log (user_id, xp_gained, reason) VALUES (?,?,?)")).
		WithArgs(uint64(5), 8, "flashcards_created").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	newXP, newLevel, err := repo.AddXP(context.Background(), 5, 8, "flashcards_created")
	require.NoError(t, err)
	assert.Equal(t, 103, newXP)
	assert.Equal(t, 2, newLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddXPUnknownUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT xp FROM users WHERE id=? FOR UPDATE")).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"xp"}))
	mock.ExpectRollback()

	_, _, err := repo.AddXP(context.Background(), 404, 5, "r")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
