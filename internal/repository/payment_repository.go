package repository

import (
	"context"
	"database/sql"

	"github.com/StevenOyar/vibe-code/internal/model"
)

// PaymentRepo persists checkout records and the status updates delivered
// by the provider's webhook.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// Create inserts a payment row in "created" state right after the
// checkout link is obtained.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO payments (user_id, ref, amount, currency, status, metadata)
		 VALUES (?,?,?,?,?,?)`,
		p.UserID, p.Ref, p.Amount, p.Currency, p.Status, p.Metadata)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpsertByRef applies a webhook update.  A known ref updates status and
// metadata in place; an unknown ref creates a fresh record so callbacks
// arriving before the local insert are not lost.
func (r *PaymentRepo) UpsertByRef(ctx context.Context, ref, status, metadata string, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE payments SET status=?, metadata=?, updated_at=CURRENT_TIMESTAMP WHERE ref=?`,
		status, metadata, ref)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var uid any
	if userID != 0 {
		uid = userID
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO payments (user_id, ref, amount, currency, status, metadata)
		 VALUES (?,?,0,'KES',?,?)`,
		uid, ref, status, metadata)
	return err
}

// ListByUser returns the user's payment history, newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, ref, amount, currency, status, metadata, created_at, updated_at
		 FROM payments WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p := &model.Payment{UserID: userID}
		var ref, status, metadata sql.NullString
		if err := rows.Scan(&p.ID, &ref, &p.Amount, &p.Currency, &status,
			&metadata, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Ref, p.Status, p.Metadata = ref.String, status.String, metadata.String
		out = append(out, p)
	}
	return out, rows.Err()
}
