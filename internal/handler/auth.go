package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/raft-seat-reservation/internal/authsvc"
	"github.com/iliyamo/raft-seat-reservation/internal/model"
)

// AuthHandler exposes the external auth façade from spec.md §4.5.
type AuthHandler struct {
	Svc *authsvc.Service
}

func NewAuthHandler(svc *authsvc.Service) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type registerResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// Register implements `register(email, password) → {success, message}`.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, registerResp{Success: false, Message: "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, registerResp{Success: false, Message: "email and password are required"})
		case errors.Is(err, authsvc.ErrAdminEmail):
			return c.JSON(http.StatusBadRequest, registerResp{Success: false, Message: "cannot register the admin email"})
		case errors.Is(err, authsvc.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, registerResp{Success: false, Message: "invalid email format"})
		case errors.Is(err, authsvc.ErrEmailExists):
			return c.JSON(http.StatusConflict, registerResp{Success: false, Message: "user already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, registerResp{Success: false, Message: "registration failed"})
		}
	}
	return c.JSON(http.StatusCreated, registerResp{Success: true, Message: "registration successful", UserID: uid})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginResp struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Session model.Session `json:"session,omitempty"`
}

// Login implements `login(email, password) → {success, message, session}`.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, loginResp{Success: false, Message: "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCreds) || errors.Is(err, authsvc.ErrInvalidInput) {
			return c.JSON(http.StatusUnauthorized, loginResp{Success: false, Message: "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, loginResp{Success: false, Message: "login failed"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Success: true,
		Message: "login successful",
		Session: model.Session{Token: res.AccessToken, UserID: res.UserID},
	})
}

type validateSessionReq struct {
	Token string `json:"token"`
}
type validateSessionResp struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
}

// ValidateSession implements `validate_session(token) → {valid, user_id}`,
// called by the booking node's coordinator.
func (h *AuthHandler) ValidateSession(c echo.Context) error {
	var req validateSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, validateSessionResp{Valid: false})
	}
	uid, valid := h.Svc.ValidateSession(c.Request().Context(), req.Token)
	return c.JSON(http.StatusOK, validateSessionResp{Valid: valid, UserID: uid})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type refreshResp struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Session model.Session `json:"session,omitempty"`
}

// Refresh implements the teacher's RefreshAccess flow: exchange a refresh
// token for a new access token without rotating the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, refreshResp{Success: false, Message: "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.RefreshAccess(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput), errors.Is(err, authsvc.ErrInvalidCreds):
			return c.JSON(http.StatusUnauthorized, refreshResp{Success: false, Message: "invalid or expired refresh token"})
		default:
			return c.JSON(http.StatusInternalServerError, refreshResp{Success: false, Message: "refresh failed"})
		}
	}
	return c.JSON(http.StatusOK, refreshResp{
		Success: true,
		Message: "token refreshed",
		Session: model.Session{Token: res.AccessToken, UserID: res.UserID},
	})
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}
type logoutResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Logout supports two modes, matching the teacher's handler: if a
// refresh_token is given in the body, only that session is revoked;
// otherwise every session for the caller's validated access token is
// revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.RefreshToken != "" {
		if err := h.Svc.LogoutOne(ctx, req.RefreshToken); err != nil {
			if errors.Is(err, authsvc.ErrInvalidCreds) {
				return c.JSON(http.StatusUnauthorized, logoutResp{Success: false, Message: "invalid refresh token"})
			}
			return c.JSON(http.StatusInternalServerError, logoutResp{Success: false, Message: "logout failed"})
		}
		return c.JSON(http.StatusOK, logoutResp{Success: true, Message: "logged out"})
	}

	bearer := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	uid, valid := h.Svc.ValidateSession(ctx, bearer)
	if !valid {
		return c.JSON(http.StatusUnauthorized, logoutResp{Success: false, Message: "provide Authorization header or refresh_token"})
	}
	if err := h.Svc.Logout(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, logoutResp{Success: false, Message: "logout failed"})
	}
	return c.JSON(http.StatusOK, logoutResp{Success: true, Message: "logged out all sessions"})
}
