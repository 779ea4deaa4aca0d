// Package router wires Echo routes to their handlers for each of the
// three services: the booking node, the auth service, and the payment
// service.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/raft-seat-reservation/internal/config"
	"github.com/iliyamo/raft-seat-reservation/internal/handler"
	"github.com/iliyamo/raft-seat-reservation/internal/middleware"
)

// RegisterHealth wires the shared /healthz probe used by every service.
func RegisterHealth(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBookingRoutes wires the booking node's client-facing RPC surface
// and its internal peer-consensus RPC surface, per spec.md §6.
func RegisterBookingRoutes(e *echo.Echo, booking *handler.BookingHandler, peer *handler.RaftPeerHandler, cfg config.Config, rateCfg config.RateLimitConfig, cacheCfg config.CacheConfig, rdb *redis.Client) {
	RegisterHealth(e)

	jwtAuth := middleware.JWTAuth(cfg.JWTSecret)
	rateLimit := middleware.NewTokenBucket(rateCfg, rdb)
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	e.POST("/book", booking.BookSeat, jwtAuth, rateLimit)
	e.POST("/shows", booking.AddShow, jwtAuth, middleware.RequireAdmin())
	e.GET("/shows", booking.ListShows, cache)
	e.GET("/shows/:show_id/seats/:seat_id", booking.QuerySeat, cache)
	e.GET("/shows/:show_id/seats", booking.ListSeats, cache)

	peerGroup := e.Group("/raft")
	peerGroup.POST("/request-vote", peer.RequestVote)
	peerGroup.POST("/append-entries", peer.AppendEntries)
}

// RegisterAuthRoutes wires the external auth façade's HTTP surface.
// Logout is unprotected by JWTAuth middleware: it accepts either a
// refresh_token body (single-session revoke) or a Bearer access token
// (all-sessions revoke), and parses the latter itself like the teacher's
// handler does, so neither mode forces the other to be present.
func RegisterAuthRoutes(e *echo.Echo, auth *handler.AuthHandler) {
	RegisterHealth(e)

	e.POST("/register", auth.Register)
	e.POST("/login", auth.Login)
	e.POST("/validate-session", auth.ValidateSession)
	e.POST("/refresh", auth.Refresh)
	e.POST("/logout", auth.Logout)
}

// RegisterPaymentRoutes wires the external payment façade's HTTP surface.
func RegisterPaymentRoutes(e *echo.Echo, payment *handler.PaymentHandler) {
	RegisterHealth(e)
	e.POST("/process-payment", payment.ProcessPayment)
	e.GET("/transactions/:transaction_id", payment.QueryTransaction)
}
