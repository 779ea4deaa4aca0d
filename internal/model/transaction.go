package model

import "time"

// Transaction records one processed (or declined) payment attempt. Every
// attempt is persisted, including failures, so QueryTransaction can report
// on a declined charge as well as a completed one.
type Transaction struct {
	ID              string    `json:"transaction_id"`
	UserID          string    `json:"user_id"`
	AmountCents     uint32    `json:"amount_cents"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"` // COMPLETED, FAILED
	CardFingerprint string    `json:"card_fingerprint"`
	CreatedAt       time.Time `json:"created_at"`
}
