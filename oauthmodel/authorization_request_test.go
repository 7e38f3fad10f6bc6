package oauthmodel_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
	"github.com/stretchr/testify/require"
)

const testChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

func validValues() url.Values {
	return url.Values{
		"response_type":         {"code"},
		"client_id":             {"client-1"},
		"redirect_uri":          {"https://claude.ai/api/mcp/auth_callback"},
		"scope":                 {"devices:read usage:read devices:read"},
		"state":                 {"xyz"},
		"code_challenge":        {testChallenge},
		"code_challenge_method": {"S256"},
	}
}

func TestParseAuthorizationRequest(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req, err := oauthmodel.ParseAuthorizationRequest(validValues())
		require.NoError(t, err)
		require.Equal(t, "client-1", req.ClientID)
		require.Equal(t, oauthmodel.CodeResponseType, req.ResponseType)
		require.Equal(t, []string{"devices:read", "usage:read"}, req.Scope)
		require.Equal(t, "xyz", req.State)
		require.Equal(t, oauthmodel.CodeMethodTypeS256, req.CodeChallengeMethod)
		require.Equal(t, "devices:read usage:read", req.ScopeString())
	})

	tests := []struct {
		name    string
		mutate  func(v url.Values)
		wantErr error
	}{
		{"missing client id", func(v url.Values) { v.Del("client_id") }, oauthmodel.ErrMissingClientID},
		{"missing redirect uri", func(v url.Values) { v.Del("redirect_uri") }, oauthmodel.ErrMissingRedirectURI},
		{"relative redirect uri", func(v url.Values) { v.Set("redirect_uri", "/callback") }, oauthmodel.ErrInvalidRedirectURI},
		{"token response type", func(v url.Values) { v.Set("response_type", "token") }, oauthmodel.ErrInvalidResponseType},
		{"unknown challenge method", func(v url.Values) { v.Set("code_challenge_method", "S512") }, oauthmodel.ErrInvalidCodeChallengeMethod},
		{"short challenge", func(v url.Values) { v.Set("code_challenge", "abc") }, oauthmodel.ErrInvalidCodeChallenge},
		{"long challenge", func(v url.Values) { v.Set("code_challenge", strings.Repeat("a", 129)) }, oauthmodel.ErrInvalidCodeChallenge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			tt.mutate(v)
			_, err := oauthmodel.ParseAuthorizationRequest(v)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing response type defaults to code", func(t *testing.T) {
		v := validValues()
		v.Del("response_type")
		req, err := oauthmodel.ParseAuthorizationRequest(v)
		require.NoError(t, err)
		require.Equal(t, oauthmodel.CodeResponseType, req.ResponseType)
	})

	t.Run("challenge without method is plain", func(t *testing.T) {
		v := validValues()
		v.Del("code_challenge_method")
		req, err := oauthmodel.ParseAuthorizationRequest(v)
		require.NoError(t, err)
		require.Equal(t, oauthmodel.CodeMethodTypePlain, req.CodeChallengeMethod)
	})
}

func TestSplitScopes(t *testing.T) {
	require.Equal(t, []string{}, oauthmodel.SplitScopes("   "))
	require.Equal(t, []string{"a", "b"}, oauthmodel.SplitScopes(" a  b a "))
}
