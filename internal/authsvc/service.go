// Package authsvc implements the external auth façade from spec.md §4.5:
// register, login, and session validation, persisted in MySQL and backed
// by the teacher's bcrypt/JWT utilities.
package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/raft-seat-reservation/internal/repository"
	"github.com/iliyamo/raft-seat-reservation/internal/utils"
)

// emailRegex mirrors auth-server.py's EMAIL_REGEX.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidInput     = errors.New("authsvc: email and password are required")
	ErrAdminEmail       = errors.New("authsvc: cannot register the admin email")
	ErrInvalidEmail     = errors.New("authsvc: invalid email format")
	ErrEmailExists      = errors.New("authsvc: email already exists")
	ErrInvalidCreds     = errors.New("authsvc: invalid email or password")
)

// Service wraps the user/token repositories behind spec.md's three
// operations. JWTSecret/AccessTTLMin/RefreshTTLDays/BcryptCost come from
// the node's config, same as the teacher's AuthHandler.
type Service struct {
	Users          *repository.UserRepo
	Tokens         *repository.TokenRepo
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

func New(users *repository.UserRepo, tokens *repository.TokenRepo, jwtSecret string, accessTTLMin, refreshTTLDays, bcryptCost int) *Service {
	return &Service{
		Users:          users,
		Tokens:         tokens,
		JWTSecret:      jwtSecret,
		AccessTTLMin:   accessTTLMin,
		RefreshTTLDays: refreshTTLDays,
		BcryptCost:     bcryptCost,
	}
}

// EnsureAdmin seeds the fixed administrator account if missing. Call once
// at service startup.
func (s *Service) EnsureAdmin(ctx context.Context) error {
	return s.Users.EnsureAdmin(ctx, s.BcryptCost)
}

// Register creates a new account and returns its freshly minted user_id.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", ErrInvalidInput
	}
	if email == repository.AdminEmail {
		return "", ErrAdminEmail
	}
	if !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	id, err := s.Users.Create(ctx, email, password, s.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// LoginResult carries the session material returned to the caller.
type LoginResult struct {
	UserID       string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// Login verifies credentials and mints a new access/refresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidInput
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, ErrInvalidCreds
		}
		return LoginResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCreds
	}

	access, err := utils.NewAccessToken(s.JWTSecret, u.ID, s.AccessTTLMin)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := utils.NewRefreshToken(s.RefreshTTLDays)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		UserID:       u.ID,
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: refresh.Raw,
		RefreshExp:   refresh.Exp,
	}, nil
}

// RefreshAccess validates a refresh token by hash and mints a new access
// token without rotating the refresh token, mirroring the teacher's
// RefreshAccess handler.
func (s *Service) RefreshAccess(ctx context.Context, rawRefresh string) (LoginResult, error) {
	rawRefresh = strings.TrimSpace(rawRefresh)
	if rawRefresh == "" {
		return LoginResult{}, ErrInvalidInput
	}
	userID, err := s.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(rawRefresh))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, ErrInvalidCreds
		}
		return LoginResult{}, err
	}
	access, err := utils.NewAccessToken(s.JWTSecret, userID, s.AccessTTLMin)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{UserID: userID, AccessToken: access.Token, AccessExp: access.Exp}, nil
}

// Logout revokes every refresh token belonging to userID, mirroring the
// teacher's Logout handler's all-sessions mode.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.Tokens.RevokeAllForUser(ctx, userID)
}

// LogoutOne revokes a single session by its raw refresh token, mirroring
// the teacher's Logout handler's single-session mode.
func (s *Service) LogoutOne(ctx context.Context, rawRefresh string) error {
	hash := utils.HashRefreshRaw(strings.TrimSpace(rawRefresh))
	if _, err := s.Tokens.ValidateRefresh(ctx, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidCreds
		}
		return err
	}
	return s.Tokens.RevokeByHash(ctx, hash)
}

// ValidateSession verifies a signed access token and returns its subject.
// Unlike the teacher's refresh-token flow, spec.md's validate_session works
// directly off the signed JWT: no database round trip is needed because
// the signature itself proves the session has not been tampered with, and
// expiry is enforced by ParseAccessToken.
func (s *Service) ValidateSession(ctx context.Context, token string) (userID string, valid bool) {
	sub, err := utils.ParseAccessToken(s.JWTSecret, token)
	if err != nil {
		return "", false
	}
	return sub, true
}
