package config_test

import (
	"testing"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvVars(t *testing.T) {
	t.Run("port gets a colon prefix", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		require.Equal(t, ":9090", config.EnvVars{}.GetPort())
	})

	t.Run("base url trailing slash trimmed", func(t *testing.T) {
		t.Setenv("BASE_URL", "https://mcp.example.com/")
		require.Equal(t, "https://mcp.example.com", config.EnvVars{}.GetBaseURL())
	})

	t.Run("env defaults to DEV", func(t *testing.T) {
		t.Setenv("ENV", "")
		require.Equal(t, "DEV", config.EnvVars{}.GetEnv())
	})
}

func TestConsentMarkers(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PROGRAMMATIC_CLIENT_MARKERS", "")
		require.Equal(t, config.DefaultProgrammaticMarkers, config.Consent{}.GetProgrammaticClientMarkers())
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("PROGRAMMATIC_CLIENT_MARKERS", "example.org, ,localhost:6274")
		require.Equal(t, []string{"example.org", "localhost:6274"}, config.Consent{}.GetProgrammaticClientMarkers())
	})
}

func TestSigningKey(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_KEY", "a-very-secret-key")
	c := config.New()
	require.Equal(t, []byte("a-very-secret-key"), c.GetTokenSigningKey())
}

func TestRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "0")
	require.False(t, config.Security{}.GetEnableRateLimiting())

	t.Setenv("RATE_LIMIT_RPS", "2.5")
	require.True(t, config.Security{}.GetEnableRateLimiting())
	require.InDelta(t, 2.5, config.Security{}.GetRateLimit(), 0.0001)
}

func TestTrustProxyHeaders(t *testing.T) {
	require.False(t, config.Security{}.GetTrustProxyHeaders())

	t.Setenv("TRUST_PROXY_HEADERS", "true")
	require.True(t, config.Security{}.GetTrustProxyHeaders())
}
