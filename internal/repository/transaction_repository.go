package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/raft-seat-reservation/internal/model"
)

// TransactionRepo persists every processed payment attempt, success or
// decline, for the payment service.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

// Create inserts a new transaction row.
func (r *TransactionRepo) Create(ctx context.Context, t model.Transaction) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount_cents, currency, status, card_fingerprint, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		t.ID, t.UserID, t.AmountCents, t.Currency, t.Status, t.CardFingerprint, t.CreatedAt)
	return err
}

// GetByID fetches a transaction by id.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (model.Transaction, error) {
	var t model.Transaction
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, currency, status, card_fingerprint, created_at
		 FROM transactions WHERE id=? LIMIT 1`, id).
		Scan(&t.ID, &t.UserID, &t.AmountCents, &t.Currency, &t.Status, &t.CardFingerprint, &t.CreatedAt)
	return t, err
}
