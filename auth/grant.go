package auth

import (
	"context"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
)

// Grant is the persisted result of an approved authorization. Access tokens
// reference it by ID; deleting it revokes every token issued from it.
type Grant struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"clientId"`
	UserID    string            `json:"userId"`
	Scope     []string          `json:"scope"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Props     map[string]any    `json:"props,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

const grantKeyPrefix = "grant:"

func (as *AuthorizationService) putGrant(ctx context.Context, g *Grant) error {
	return kv.PutJSON(ctx, as.repos.Store, grantKeyPrefix+g.ID, g, as.config.GetDefaultRefreshTokenExpiry())
}

// GetGrant loads a grant by ID.
func (as *AuthorizationService) GetGrant(ctx context.Context, grantID string) (*Grant, error) {
	var g Grant
	if err := kv.GetJSON(ctx, as.repos.Store, grantKeyPrefix+grantID, &g); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, errors.Wrapf(errors.ErrInvalidGrant, "grant %s", grantID)
		}
		return nil, errors.Wrapf(err, "[AuthorizationService.GetGrant]")
	}
	return &g, nil
}

func (as *AuthorizationService) deleteGrant(ctx context.Context, grantID string) error {
	return as.repos.Store.Delete(ctx, grantKeyPrefix+grantID)
}

type grantContextKey struct{}

// WithGrant attaches an authenticated grant to ctx.
func WithGrant(ctx context.Context, g *Grant) context.Context {
	return context.WithValue(ctx, grantContextKey{}, g)
}

// GrantFromContext returns the grant attached by WithGrant, or nil.
func GrantFromContext(ctx context.Context) *Grant {
	g, _ := ctx.Value(grantContextKey{}).(*Grant)
	return g
}
