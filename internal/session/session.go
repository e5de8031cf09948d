// Package session issues and verifies the signed session token carried in
// the session cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"safar/internal/config"
)

// ErrInvalidSession covers missing, malformed, expired and revoked tokens
var ErrInvalidSession = errors.New("invalid session")

// Claims is the session payload
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Revoker remembers logged-out token ids until they expire
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Manager issues, verifies and renews session tokens
type Manager struct {
	secret       []byte
	ttl          time.Duration
	cookieName   string
	secureCookie bool
	revoker      Revoker
	now          func() time.Time
}

// NewManager creates a session manager; revoker may be nil
func NewManager(cfg *config.SessionConfig, revoker Revoker) *Manager {
	return &Manager{
		secret:       []byte(cfg.Secret),
		ttl:          cfg.TTL,
		cookieName:   cfg.CookieName,
		secureCookie: cfg.SecureCookie,
		revoker:      revoker,
		now:          time.Now,
	}
}

// Issue signs a new session for the user
func (m *Manager) Issue(userID, email string) (string, time.Time, error) {
	return m.sign(userID, email, uuid.NewString())
}

func (m *Manager) sign(userID, email, tokenID string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

// Verify checks the signature, expiry and revocation of a token
func (m *Manager) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidSession)
	}

	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: revocation check failed: %v", ErrInvalidSession, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidSession)
		}
	}

	return claims, nil
}

// Renew re-signs a valid session with a fresh expiry. The token id is
// kept so that logging out revokes every renewal of the session.
func (m *Manager) Renew(ctx context.Context, tokenStr string) (string, time.Time, *Claims, error) {
	claims, err := m.Verify(ctx, tokenStr)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	token, expires, err := m.sign(claims.UserID, claims.Email, claims.ID)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expires, claims, nil
}

// Revoke invalidates the session until its longest possible expiry
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	return m.revoker.Revoke(ctx, claims.ID, m.now().Add(m.ttl))
}
