package jwt_test

import (
	"testing"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/token/jwt"
	"github.com/stretchr/testify/require"
)

type testOAuthConfig struct {
	config.OAuth
	key []byte
}

func (c testOAuthConfig) GetTokenSigningKey() []byte { return c.key }

func TestCreator(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cfg := testOAuthConfig{key: []byte("test-signing-key")}
	creator := jwt.NewCreator(cfg, "https://mcp.example.com", jwt.WithNowTime(clock))

	raw, expiry, err := creator.CreateAccessToken("grant-1", "client-1", "a@b.com", []string{"devices:read", "usage:read"})
	require.NoError(t, err)
	require.Equal(t, time.Hour, expiry)

	t.Run("round trip", func(t *testing.T) {
		claims, err := creator.ParseAccessToken(raw)
		require.NoError(t, err)
		require.Equal(t, "grant-1", claims.GrantID)
		require.Equal(t, "client-1", claims.ClientID)
		require.Equal(t, "a@b.com", claims.Subject)
		require.Equal(t, []string{"devices:read", "usage:read"}, claims.Scope)
		require.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("wrong key", func(t *testing.T) {
		other := jwt.NewCreator(testOAuthConfig{key: []byte("other")}, "https://mcp.example.com", jwt.WithNowTime(clock))
		_, err := other.ParseAccessToken(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := jwt.NewCreator(cfg, "https://evil.example.com", jwt.WithNowTime(clock))
		_, err := other.ParseAccessToken(raw)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := jwt.NewCreator(cfg, "https://mcp.example.com", jwt.WithNowTime(func() time.Time { return now.Add(2 * time.Hour) }))
		_, err := later.ParseAccessToken(raw)
		require.ErrorIs(t, err, errors.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := creator.ParseAccessToken("not-a-token")
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	})
}
