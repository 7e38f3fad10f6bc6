// Package authflowrepo parks parsed authorization requests between
// /authorize and /approve behind an opaque request token.
package authflowrepo

import (
	"context"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

// PendingRequest is the stored form of an authorization request awaiting
// the user's decision.
type PendingRequest struct {
	Request   oauthmodel.AuthorizationRequest `json:"request"`
	CreatedAt time.Time                       `json:"createdAt"`
}

type Repo interface {
	// Put stores req and returns the request token that retrieves it.
	Put(ctx context.Context, req *oauthmodel.AuthorizationRequest) (string, error)
	// Get reads a pending request without consuming it.
	Get(ctx context.Context, token string) (*oauthmodel.AuthorizationRequest, error)
	// Take reads and deletes a pending request. A token can be taken once.
	Take(ctx context.Context, token string) (*oauthmodel.AuthorizationRequest, error)
}
