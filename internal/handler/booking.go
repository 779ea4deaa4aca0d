package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raft-seat-reservation/internal/coordinator"
)

// BookingHandler exposes the reservation coordinator over HTTP, per
// spec.md §6's client-facing RPC surface.
type BookingHandler struct {
	Coord *coordinator.Coordinator
}

func NewBookingHandler(c *coordinator.Coordinator) *BookingHandler {
	return &BookingHandler{Coord: c}
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

type bookSeatReq struct {
	ShowID string `json:"show_id"`
	SeatID uint32 `json:"seat_id"`
	Card   string `json:"card_number"`
}

// BookSeat implements `BookSeat(session_token, show_id, seat_id, card_number)`.
func (h *BookingHandler) BookSeat(c echo.Context) error {
	var req bookSeatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": coordinator.KindInvalidArgument, "message": "invalid body"})
	}
	res, err := h.Coord.Book(c.Request().Context(), bearerToken(c), req.ShowID, req.SeatID, req.Card)
	if err != nil {
		return writeCoordErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "booking confirmed",
		"booking_id": res.BookingID,
		"seat": echo.Map{
			"show_id":     res.ShowID,
			"seat_id":     res.SeatID,
			"user_id":     res.UserID,
			"price_cents": res.PriceCents,
		},
	})
}

type addShowReq struct {
	ShowID     string `json:"show_id"`
	TotalSeats uint32 `json:"total_seats"`
	PriceCents uint32 `json:"price_cents"`
}

// AddShow implements `AddShow(session_token, show_id, total_seats, price_cents)`.
func (h *BookingHandler) AddShow(c echo.Context) error {
	var req addShowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": coordinator.KindInvalidArgument, "message": "invalid body"})
	}
	if err := h.Coord.AddShow(c.Request().Context(), bearerToken(c), req.ShowID, req.TotalSeats, req.PriceCents); err != nil {
		return writeCoordErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// QuerySeat implements `QuerySeat(show_id, seat_id) → {available, seat}`.
func (h *BookingHandler) QuerySeat(c echo.Context) error {
	showID := c.Param("show_id")
	seatID, err := strconv.ParseUint(c.Param("seat_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": coordinator.KindSeatOutOfRange, "message": "invalid seat_id"})
	}
	res, err := h.Coord.Query(showID, uint32(seatID))
	if err != nil {
		return writeCoordErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available": !res.Reserved,
		"seat":      res,
	})
}

// ListSeats implements `ListSeats(show_id, page_size, page_token) → {seats[], next_page_token}`.
func (h *BookingHandler) ListSeats(c echo.Context) error {
	showID := c.Param("show_id")
	pageSize := uint64(50)
	if v := c.QueryParam("page_size"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			pageSize = n
		}
	}
	pageToken := uint64(0)
	if v := c.QueryParam("page_token"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			pageToken = n
		}
	}
	seats, _, next, err := h.Coord.List(showID, uint32(pageSize), uint32(pageToken))
	if err != nil {
		return writeCoordErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seats":           seats,
		"next_page_token": next,
	})
}

// ListShows implements `ListShows() → {shows[]}`.
func (h *BookingHandler) ListShows(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"shows": h.Coord.ListShows()})
}
