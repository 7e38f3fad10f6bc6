package clients_test

import (
	"context"
	"testing"

	"github.com/Acceleronix/cmp-auth-mcp-server/clients"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	hash, err := clients.HashSecret("s3cret")
	require.NoError(t, err)

	confidential := &clients.Client{
		ID:           "c1",
		Type:         clients.ClientTypeConfidential,
		SecretHash:   hash,
		RedirectURIs: []string{"https://app.example.com/cb"},
		GrantTypes:   []oauthmodel.GrantType{oauthmodel.AuthorizationCodeGrant},
	}

	require.True(t, confidential.CheckSecret("s3cret"))
	require.False(t, confidential.CheckSecret("wrong"))
	require.True(t, confidential.HasRedirectURI("https://app.example.com/cb"))
	require.False(t, confidential.HasRedirectURI("https://app.example.com/cb/"))
	require.True(t, confidential.AllowsGrant(oauthmodel.AuthorizationCodeGrant))
	require.False(t, confidential.AllowsGrant(oauthmodel.RefreshTokenGrant))

	public := &clients.Client{ID: "p1", Type: clients.ClientTypePublic, SecretHash: hash}
	require.True(t, public.IsPublic())
	require.False(t, public.CheckSecret("s3cret"))
}

func TestKVRepo(t *testing.T) {
	ctx := context.Background()
	repo := clients.NewKVRepo(kv.NewMemoryStore())

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, errors.ErrNotFound)

	client := &clients.Client{ID: "c1", Name: "Claude", RedirectURIs: []string{"https://claude.ai/api/mcp/auth_callback"}}
	require.NoError(t, repo.Upsert(ctx, client))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "Claude", got.Name)
	require.Equal(t, oauthmodel.ClientMetadata{Name: "Claude"}, got.Metadata())

	require.NoError(t, repo.Delete(ctx, "c1"))
	_, err = repo.Get(ctx, "c1")
	require.ErrorIs(t, err, clients.ErrClientNotFound)

	require.Error(t, repo.Upsert(ctx, &clients.Client{}))
}
