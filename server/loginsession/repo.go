// Package loginsession remembers users who logged in on the consent screen
// so later authorization requests skip the login form.
package loginsession

import (
	"context"
	"time"
)

type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Repo interface {
	// Create starts a session for email.
	Create(ctx context.Context, email string) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
