// Package coordinator is the booking-facing façade over the consensus
// node: it validates sessions via auth, charges via payment, proposes
// reservation commands, and reports the resulting seat record.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/raft-seat-reservation/internal/consensus"
	"github.com/iliyamo/raft-seat-reservation/internal/queue"
	"github.com/iliyamo/raft-seat-reservation/internal/statemachine"
)

// AuthClient is the coordinator's view of the external auth façade.
type AuthClient interface {
	ValidateSession(ctx context.Context, token string) (userID string, valid bool, err error)
}

// PaymentClient is the coordinator's view of the external payment façade.
type PaymentClient interface {
	ProcessPayment(ctx context.Context, userID string, amountCents uint32, currency, card string) (transactionID string, status string, err error)
}

// AdminChecker reports whether a user_id is the reserved administrator.
// Implemented by internal/repository.IsAdmin.
type AdminChecker func(userID string) bool

// Coordinator wires the consensus node to the external auth/payment
// façades per spec.md §4.4.
type Coordinator struct {
	node     *consensus.Node
	auth     AuthClient
	payment  PaymentClient
	isAdmin  AdminChecker
	currency string

	// Publish fans a ReservationConfirmedEvent out to the message broker
	// after a booking commits and applies. Nil is a valid no-op, which
	// keeps unit tests free of a RabbitMQ dependency.
	Publish func(ctx context.Context, event queue.ReservationConfirmedEvent) error
}

// New constructs a Coordinator. currency is the fixed ISO currency code
// charged for every booking (spec.md's non-goals exclude multi-currency
// pricing).
func New(node *consensus.Node, auth AuthClient, payment PaymentClient, isAdmin AdminChecker, currency string) *Coordinator {
	return &Coordinator{node: node, auth: auth, payment: payment, isAdmin: isAdmin, currency: currency}
}

// BookingResult is returned by a successful Book call.
type BookingResult struct {
	BookingID  string `json:"booking_id"`
	ShowID     string `json:"show_id"`
	SeatID     uint32 `json:"seat_id"`
	UserID     string `json:"user_id"`
	PriceCents uint32 `json:"price_cents"`
}

func (c *Coordinator) authenticate(ctx context.Context, token string) (string, error) {
	userID, valid, err := c.auth.ValidateSession(ctx, token)
	if err != nil {
		return "", newErr(KindInternal, fmt.Sprintf("auth service unavailable: %v", err))
	}
	if !valid {
		return "", newErr(KindUnauthenticated, "invalid or expired session")
	}
	return userID, nil
}

// Book implements spec.md §4.4's book operation: authenticate, leader
// check, price lookup, pre-check, charge, propose, verify-post-apply.
func (c *Coordinator) Book(ctx context.Context, token, showID string, seatID uint32, card string) (BookingResult, error) {
	userID, err := c.authenticate(ctx, token)
	if err != nil {
		return BookingResult{}, err
	}

	if !c.node.IsLeader() {
		return BookingResult{}, newErr(KindNotLeader, "this node is not the Raft leader")
	}

	before := c.node.StateMachine().Query(showID, seatID)
	if !before.Exists {
		return BookingResult{}, newErr(KindUnknownShow, "show or seat does not exist")
	}
	if before.Reserved {
		return BookingResult{}, newErr(KindSeatTaken, "seat is already reserved")
	}

	txnID, status, err := c.payment.ProcessPayment(ctx, userID, before.PriceCents, c.currency, card)
	if err != nil {
		return BookingResult{}, newErr(KindInternal, fmt.Sprintf("payment service unavailable: %v", err))
	}
	if status != "COMPLETED" {
		return BookingResult{}, newErr(KindPaymentFailed, "payment was declined")
	}

	cmd := statemachine.Command{
		Type:      statemachine.CommandReserve,
		ShowID:    showID,
		SeatID:    seatID,
		UserID:    userID,
		BookingID: txnID,
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return BookingResult{}, newErr(KindInternal, err.Error())
	}

	if _, err := c.node.Propose(payload); err != nil {
		return BookingResult{}, bookProposeErr(err)
	}

	after := c.node.StateMachine().Query(showID, seatID)
	if !after.Reserved || after.BookingID != txnID {
		// Another reservation for this seat committed first; the charge
		// already happened and is not refunded, per spec.md §9.
		return BookingResult{}, newErr(KindSeatTaken, "seat was reserved by another booking before this one committed")
	}

	result := BookingResult{
		BookingID:  txnID,
		ShowID:     showID,
		SeatID:     seatID,
		UserID:     userID,
		PriceCents: after.PriceCents,
	}
	c.publishConfirmed(result)
	return result, nil
}

// publishConfirmed fans the confirmation out asynchronously; a broker
// outage must never fail or delay a booking that has already committed.
func (c *Coordinator) publishConfirmed(result BookingResult) {
	if c.Publish == nil {
		return
	}
	event := queue.ReservationConfirmedEvent{
		BookingID:   result.BookingID,
		UserID:      result.UserID,
		ShowID:      result.ShowID,
		SeatID:      result.SeatID,
		PriceCents:  result.PriceCents,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Publish(ctx, event); err != nil {
			log.Printf("coordinator: publish reservation confirmed failed: %v", err)
		}
	}()
}

// AddShow implements spec.md §4.4's add_show operation: same
// authentication flow, additionally requiring the administrator identity.
func (c *Coordinator) AddShow(ctx context.Context, token, showID string, totalSeats, priceCents uint32) error {
	userID, err := c.authenticate(ctx, token)
	if err != nil {
		return err
	}
	if !c.isAdmin(userID) {
		return newErr(KindPermissionDenied, "only the administrator may add or update shows")
	}
	if !c.node.IsLeader() {
		return newErr(KindNotLeader, "this node is not the Raft leader")
	}
	if totalSeats == 0 {
		return newErr(KindInvalidArgument, "total_seats must be positive")
	}

	cmd := statemachine.Command{Type: statemachine.CommandAddShow, ShowID: showID, TotalSeats: totalSeats, PriceCents: priceCents}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return newErr(KindInternal, err.Error())
	}
	if _, err := c.node.Propose(payload); err != nil {
		return translateProposeErr(err)
	}
	return nil
}

// Query serves a single seat lookup from the local state machine, without
// going through consensus.
func (c *Coordinator) Query(showID string, seatID uint32) (statemachine.SeatQueryResult, error) {
	res := c.node.StateMachine().Query(showID, seatID)
	if !res.Exists {
		return statemachine.SeatQueryResult{}, newErr(KindUnknownShow, "show or seat does not exist")
	}
	return res, nil
}

// List pages through a show's seats deterministically by seat number.
func (c *Coordinator) List(showID string, pageSize uint32, pageToken uint32) ([]statemachine.SeatQueryResult, []uint32, uint32, error) {
	if !c.showExists(showID) {
		return nil, nil, 0, newErr(KindUnknownShow, "show does not exist")
	}
	seats, seatNumbers, next := c.node.StateMachine().ListSeats(showID, pageToken, pageSize)
	return seats, seatNumbers, next, nil
}

func (c *Coordinator) showExists(showID string) bool {
	for _, s := range c.node.StateMachine().ListShows() {
		if s.ShowID == showID {
			return true
		}
	}
	return false
}

// ListShows reports every show with its booked/available seat counts.
func (c *Coordinator) ListShows() []statemachine.ShowCounts {
	return c.node.StateMachine().ListShows()
}

func translateProposeErr(err error) error {
	switch err {
	case consensus.ErrNotLeader:
		return newErr(KindNotLeader, "this node is not the Raft leader")
	case consensus.ErrLeadershipLost:
		return newErr(KindLeadershipLost, "leadership was lost before the proposal was applied")
	case consensus.ErrProposalTimeout:
		return newErr(KindProposalTimeout, "proposal timed out before being applied")
	default:
		return newErr(KindInternal, err.Error())
	}
}

// bookProposeErr maps a Propose failure from Book, where the charge has
// already happened. A timed-out proposal reports Internal, never
// ProposalTimeout, which would otherwise surface as a 504 for a charge that
// already went through; every other error is translated as for AddShow.
// The SeatTaken outcome is reported by Book's post-apply check, not here.
func bookProposeErr(err error) error {
	if err == consensus.ErrProposalTimeout {
		return newErr(KindInternal, "proposal timed out after payment was charged")
	}
	return translateProposeErr(err)
}
