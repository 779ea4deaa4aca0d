package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raft-seat-reservation/internal/paymentsvc"
)

// PaymentHandler exposes the external payment façade from spec.md §4.6.
type PaymentHandler struct {
	Svc *paymentsvc.Service
}

func NewPaymentHandler(svc *paymentsvc.Service) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

type processPaymentReq struct {
	UserID      string `json:"user_id"`
	AmountCents uint32 `json:"amount_cents"`
	Currency    string `json:"currency"`
	Card        string `json:"card"`
}
type processPaymentResp struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// ProcessPayment implements `process_payment(user_id, amount_cents, currency, card)`.
func (h *PaymentHandler) ProcessPayment(c echo.Context) error {
	var req processPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, processPaymentResp{Success: false, Message: "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txnID, status, err := h.Svc.ProcessPayment(ctx, req.UserID, req.AmountCents, req.Currency, req.Card)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, processPaymentResp{Success: false, Message: "payment processing failed"})
	}
	message := "payment processed successfully"
	if status == paymentsvc.StatusFailed {
		message = "payment was declined"
	}
	return c.JSON(http.StatusOK, processPaymentResp{
		Success:       status == paymentsvc.StatusCompleted,
		TransactionID: txnID,
		Status:        status,
		Message:       message,
	})
}

type queryTransactionResp struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	AmountCents   uint32 `json:"amount_cents,omitempty"`
	Currency      string `json:"currency,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// QueryTransaction implements `query_transaction(transaction_id)`.
func (h *PaymentHandler) QueryTransaction(c echo.Context) error {
	id := c.Param("transaction_id")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txn, err := h.Svc.QueryTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusOK, queryTransactionResp{TransactionID: id, Status: "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, queryTransactionResp{
		TransactionID: txn.ID,
		Status:        txn.Status,
		AmountCents:   txn.AmountCents,
		Currency:      txn.Currency,
		CreatedAt:     txn.CreatedAt.Format(time.RFC3339),
	})
}
