package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/iliyamo/raft-seat-reservation/internal/model"
	"github.com/iliyamo/raft-seat-reservation/internal/utils"
)

// AdminEmail, AdminPassword and AdminUserID are fixed per spec: the
// administrator account must exist at startup, be unregistrable, and
// always resolve to the same user_id.
const (
	AdminEmail    = "admin@gmail.com"
	AdminPassword = "admin123"
	AdminUserID   = "00000000-0000-0000-0000-000000000000"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a new user with a freshly generated user_id and returns it.
func (r *UserRepo) Create(ctx context.Context, email, password string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash) VALUES (?,?,?)",
		id, email, hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// EnsureAdmin seeds the fixed administrator account if it is missing, and
// repairs its id if it has ever drifted from AdminUserID. Mirrors
// auth-server.py's _ensure_admin_user.
func (r *UserRepo) EnsureAdmin(ctx context.Context, cost int) error {
	u, err := r.GetByEmail(ctx, AdminEmail)
	if errors.Is(err, sql.ErrNoRows) {
		hash, herr := utils.HashPassword(AdminPassword, cost)
		if herr != nil {
			return herr
		}
		_, err = r.DB.ExecContext(ctx,
			"INSERT INTO users (id, email, password_hash) VALUES (?,?,?)",
			AdminUserID, AdminEmail, hash)
		return err
	}
	if err != nil {
		return err
	}
	if u.ID != AdminUserID {
		_, err = r.DB.ExecContext(ctx, "UPDATE users SET id=? WHERE email=?", AdminUserID, AdminEmail)
		return err
	}
	return nil
}

// IsAdmin reports whether the given user_id is the reserved administrator.
func IsAdmin(userID string) bool { return userID == AdminUserID }
