package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/StevenOyar/vibe-code/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, email, password_hash, xp, level,
	current_streak, best_streak, total_cards, last_activity,
	last_streak_date, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.XP, &u.Level, &u.CurrentStreak, &u.BestStreak, &u.TotalCards,
		&u.LastActivity, &u.LastStreakDate, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID.  Uniqueness of username and
// email is enforced by the table constraints; MySQL error 1062 is mapped
// to the matching sentinel using the key name in the driver message.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)",
		username, email, passwordHash)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsernameOrEmail fetches a user matching either the username column
// or the (lowercased) email column.  Login accepts both identifiers with
// one query.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, s string) (model.User, error) {
	s = strings.TrimSpace(s)
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1",
		s, strings.ToLower(s)))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// AddXP adds xp to the user, recomputes the level (one level per 100 XP,
// floor 1) and appends an xp_log row.  Returns the new totals.
func (r *UserRepo) AddXP(ctx context.Context, userID uint64, xp int, reason string) (newXP, newLevel int, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err = tx.QueryRowContext(ctx,
		"SELECT xp FROM users WHERE id=? FOR UPDATE", userID).Scan(&newXP); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, err
	}
	newXP += xp
	newLevel = newXP/100 + 1
	if newLevel < 1 {
		newLevel = 1
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE users SET xp=?, level=? WHERE id=?", newXP, newLevel, userID); err != nil {
		return 0, 0, err
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO xp_log (user_id, xp_gained, reason) VALUES (?,?,?)",
		userID, xp, reason); err != nil {
		return 0, 0, err
	}
	return newXP, newLevel, tx.Commit()
}

// SetTotalCards refreshes the denormalized card counter and the last
// activity timestamp after a batch save.
func (r *UserRepo) SetTotalCards(ctx context.Context, userID uint64, total int) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET total_cards=?, last_activity=NOW() WHERE id=?",
		total, userID)
	return err
}
