// Package paymentsvc implements the external payment façade from
// spec.md §4.6: deterministic sentinel-card failure, masked card
// fingerprint, every attempt persisted regardless of outcome.
package paymentsvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iliyamo/raft-seat-reservation/internal/model"
	"github.com/iliyamo/raft-seat-reservation/internal/repository"
)

// sentinelCard is the card number that deterministically fails.
const sentinelCard = "9999"

const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

type Service struct {
	Transactions *repository.TransactionRepo
}

func New(transactions *repository.TransactionRepo) *Service {
	return &Service{Transactions: transactions}
}

// ProcessPayment charges amountCents against card, failing deterministically
// when card equals the sentinel. Every attempt, success or failure, is
// persisted with a freshly generated transaction_id.
func (s *Service) ProcessPayment(ctx context.Context, userID string, amountCents uint32, currency, card string) (transactionID string, status string, err error) {
	status = StatusCompleted
	if card == sentinelCard {
		status = StatusFailed
	}

	txn := model.Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		AmountCents:     amountCents,
		Currency:        currency,
		Status:          status,
		CardFingerprint: maskCard(card),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Transactions.Create(ctx, txn); err != nil {
		return "", "", err
	}
	return txn.ID, txn.Status, nil
}

// QueryTransaction returns the persisted record for a prior payment attempt.
func (s *Service) QueryTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	return s.Transactions.GetByID(ctx, transactionID)
}

// maskCard keeps only the last 4 digits, per spec.md §4.6.
func maskCard(card string) string {
	if len(card) <= 4 {
		return card
	}
	masked := make([]byte, len(card)-4)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + card[len(card)-4:]
}
