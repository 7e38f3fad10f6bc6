// Package refresh manages opaque, rotating refresh tokens.
package refresh

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
)

const keyPrefix = "refresh:"

// StoredRefreshToken is persisted under the hash of the token, never the
// token itself.
type StoredRefreshToken struct {
	GrantID  string    `json:"grantId"`
	ClientID string    `json:"clientId"`
	UserID   string    `json:"userId"`
	Scope    []string  `json:"scope"`
	Iat      time.Time `json:"iat"`
}

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	store   kv.Store
	config  config.OAuthConfig
	nowTime func() time.Time
}

type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager creates a new refresh token manager
func NewManager(store kv.Store, cfg config.OAuthConfig, options ...Option) *Manager {
	m := &Manager{
		store:   store,
		config:  cfg,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Create generates a new refresh token and stores it
func (m *Manager) Create(ctx context.Context, grantID, clientID, userID string, scope []string) (string, error) {
	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := kv.PutJSON(ctx, m.store, keyPrefix+HashToken(tokenStr), &StoredRefreshToken{
		GrantID:  grantID,
		ClientID: clientID,
		UserID:   userID,
		Scope:    scope,
		Iat:      m.nowTime(),
	}, m.config.GetDefaultRefreshTokenExpiry()); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Take consumes a refresh token. Every refresh token is single use; the
// caller issues a replacement.
func (m *Manager) Take(ctx context.Context, token string) (*StoredRefreshToken, error) {
	if token == "" {
		return nil, errors.ErrInvalidGrant
	}
	var rt StoredRefreshToken
	if err := kv.TakeJSON(ctx, m.store, keyPrefix+HashToken(token), &rt); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, errors.Wrapf(errors.ErrInvalidGrant, "refresh token unknown or expired")
		}
		return nil, err
	}
	if m.nowTime().Sub(rt.Iat) > m.config.GetDefaultRefreshTokenExpiry() {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "refresh token expired")
	}
	return &rt, nil
}

// Delete removes a refresh token from storage
func (m *Manager) Delete(ctx context.Context, token string) error {
	return m.store.Delete(ctx, keyPrefix+HashToken(token))
}

// HashToken is the storage key derivation for opaque tokens and codes.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
