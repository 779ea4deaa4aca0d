package utils

import (
	"crypto/rand"   // secure random
	"crypto/sha256" // hash refresh
	"encoding/hex"  // hex encoding
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken = signed JWT + expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken = raw string for client + expiry (DB stores only SHA-256 hash).
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// NewAccessToken builds HS256 JWT for a user. The token's signed "sub"
// claim is the session's user_id; ValidateSession trusts it only after
// verifying the signature.
func NewAccessToken(secret string, userID string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a strong random token (raw) and expiry.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// ParseAccessToken verifies signature and expiry and returns the "sub" claim.
func ParseAccessToken(secret string, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}

// HashRefreshRaw returns SHA-256(raw) as hex.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex string from n random bytes.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
