// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published after a booking is committed and
// applied to the state machine. It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the consensus node directly.
type ReservationConfirmedEvent struct {
    BookingID   string `json:"booking_id"`
    UserID      string `json:"user_id"`
    ShowID      string `json:"show_id"`
    SeatID      uint32 `json:"seat_id"`
    PriceCents  uint32 `json:"price_cents"`
    ConfirmedAt string `json:"confirmed_at"`
}