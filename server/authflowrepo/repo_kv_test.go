package authflowrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
	"github.com/Acceleronix/cmp-auth-mcp-server/server/authflowrepo"
)

func TestKVRepo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := kv.NewMemoryStore(kv.WithNowTime(clock))
	repo := authflowrepo.NewKVRepo(store, 15*time.Minute, authflowrepo.WithNowTime(clock))
	ctx := context.Background()

	req := &oauthmodel.AuthorizationRequest{
		ResponseType: oauthmodel.CodeResponseType,
		ClientID:     "client-1",
		RedirectURI:  "https://claude.ai/api/mcp/auth_callback",
		Scope:        []string{"devices:read"},
		State:        "xyz",
	}

	t.Run("put, get and take once", func(t *testing.T) {
		token, err := repo.Put(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		got, err := repo.Get(ctx, token)
		require.NoError(t, err)
		require.Equal(t, req.ClientID, got.ClientID)

		taken, err := repo.Take(ctx, token)
		require.NoError(t, err)
		require.Equal(t, *req, *taken)

		_, err = repo.Take(ctx, token)
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := repo.Put(ctx, req)
		require.NoError(t, err)
		now = now.Add(16 * time.Minute)
		_, err = repo.Take(ctx, token)
		require.ErrorIs(t, err, authflowrepo.ErrRequestNotFound)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := repo.Get(ctx, "")
		require.ErrorIs(t, err, errors.ErrNotFound)
	})
}
