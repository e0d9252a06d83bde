package repository

import (
	"context"
	"database/sql"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// TodoRepo encapsulates all database queries related to todo items.
type TodoRepo struct{ DB *sql.DB }

func NewTodoRepo(db *sql.DB) *TodoRepo { return &TodoRepo{DB: db} }

// Create inserts a todo and returns its ID.
func (r *TodoRepo) Create(ctx context.Context, t *model.Todo) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO todos (user_id, title, description, due_date, priority, subject)
		 VALUES (?,?,?,?,?,?)`,
		t.UserID, t.Title, t.Description, t.DueDate, t.Priority, t.Subject)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns the user's todos ordered by due date then recency.
func (r *TodoRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, title, description, due_date, priority, subject, completed, created_at, updated_at
		 FROM todos WHERE user_id = ?
		 ORDER BY due_date ASC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Todo
	for rows.Next() {
		t := &model.Todo{UserID: userID}
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &desc, &t.DueDate, &t.Priority,
			&t.Subject, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Description = desc.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// SetCompleted flips the completion flag for an owned todo.
func (r *TodoRepo) SetCompleted(ctx context.Context, id, userID uint64, completed bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE todos SET completed=?, updated_at=CURRENT_TIMESTAMP
		 WHERE id=? AND user_id=?`, completed, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// Delete removes the todo only when it belongs to the user.
func (r *TodoRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM todos WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTodoNotFound
	}
	return nil
}
