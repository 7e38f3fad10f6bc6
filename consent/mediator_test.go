package consent_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Acceleronix/cmp-auth-mcp-server/consent"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

const (
	programmaticRedirect = "https://claude.ai/api/mcp/auth_callback?session=1"
	browserRedirect      = "https://app.example.com/callback"
	redirectTo           = "https://claude.ai/api/mcp/auth_callback?code=abc&session=1&state=xyz"
	testEmail            = "a@b.com"
)

type fakePending struct {
	requests map[string]*oauthmodel.AuthorizationRequest
}

func (p *fakePending) Take(_ context.Context, token string) (*oauthmodel.AuthorizationRequest, error) {
	req, ok := p.requests[token]
	if !ok {
		return nil, errors.ErrNotFound
	}
	delete(p.requests, token)
	return req, nil
}

type fakeGrants struct {
	calls []oauthmodel.CompletionRequest
	err   error
}

func (g *fakeGrants) CompleteAuthorization(_ context.Context, req oauthmodel.CompletionRequest) (*oauthmodel.CompletionResult, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	return &oauthmodel.CompletionResult{RedirectTo: redirectTo}, nil
}

type testFixture struct {
	pending  *fakePending
	grants   *fakeGrants
	mediator *consent.Mediator
}

func setupTestFixture(t *testing.T, options ...consent.Option) *testFixture {
	t.Helper()

	f := &testFixture{
		pending: &fakePending{requests: map[string]*oauthmodel.AuthorizationRequest{}},
		grants:  &fakeGrants{},
	}
	f.mediator = consent.NewMediator(f.pending, f.grants, options...)
	return f
}

func (f *testFixture) park(token, redirectURI string, scope ...string) {
	f.pending.requests[token] = &oauthmodel.AuthorizationRequest{
		ResponseType: oauthmodel.CodeResponseType,
		ClientID:     "client-1",
		RedirectURI:  redirectURI,
		Scope:        scope,
		State:        "xyz",
	}
}

func TestSelectScreen(t *testing.T) {
	req := &oauthmodel.AuthorizationRequest{ClientID: "client-1", RedirectURI: browserRedirect}

	for _, authenticated := range []bool{true, false} {
		screen := consent.SelectScreen(authenticated, req, consent.DefaultScopes)
		if authenticated {
			require.Equal(t, consent.LoggedIn, screen.Variant)
		} else {
			require.Equal(t, consent.LoggedOut, screen.Variant)
		}
		require.Same(t, req, screen.Request)
		require.Equal(t, consent.DefaultScopes, screen.Scopes)
	}
}

func TestParseDecision(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		d, err := consent.ParseDecision(url.Values{
			"action":        {"login_approve"},
			"request_token": {"tok"},
			"email":         {" a@b.com "},
			"password":      {"pw"},
		})
		require.NoError(t, err)
		require.Equal(t, consent.ActionLoginApprove, d.Action)
		require.Equal(t, "tok", d.RequestToken)
		require.Equal(t, testEmail, d.Identity)
		require.Equal(t, "pw", d.Credential)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := consent.ParseDecision(url.Values{"action": {"maybe"}, "request_token": {"tok"}})
		require.ErrorIs(t, err, errors.ErrMalformedRequest)
	})

	t.Run("missing request token", func(t *testing.T) {
		_, err := consent.ParseDecision(url.Values{"action": {"approve"}})
		require.ErrorIs(t, err, errors.ErrInvalidGrantContext)
	})
}

func TestDecideReject(t *testing.T) {
	t.Run("programmatic client gets an access_denied redirect", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", programmaticRedirect)

		out, err := f.mediator.Decide(context.Background(), consent.Decision{Action: consent.ActionReject, RequestToken: "tok"})
		require.NoError(t, err)
		require.Equal(t, consent.Denied, out.Status)
		require.True(t, out.Redirect)

		u, err := url.Parse(out.RedirectTo)
		require.NoError(t, err)
		require.Equal(t, "claude.ai", u.Host)
		require.Equal(t, "access_denied", u.Query().Get("error"))
		require.NotEmpty(t, u.Query().Get("error_description"))
		require.Equal(t, "xyz", u.Query().Get("state"))
		require.Equal(t, "1", u.Query().Get("session"))
		require.Empty(t, f.grants.calls)
	})

	t.Run("browser client gets a page", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", browserRedirect)

		out, err := f.mediator.Decide(context.Background(), consent.Decision{Action: consent.ActionReject, RequestToken: "tok"})
		require.NoError(t, err)
		require.Equal(t, consent.Denied, out.Status)
		require.False(t, out.Redirect)
		require.Empty(t, out.RedirectTo)
	})

	t.Run("custom markers", func(t *testing.T) {
		f := setupTestFixture(t, consent.WithClientMarkers([]string{"app.example.com"}))
		f.park("tok", browserRedirect)

		out, err := f.mediator.Decide(context.Background(), consent.Decision{Action: consent.ActionReject, RequestToken: "tok"})
		require.NoError(t, err)
		require.True(t, out.Redirect)
	})
}

func TestDecideApprove(t *testing.T) {
	t.Run("programmatic approval redirects verbatim", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", "https://claude.ai/callback?x=1")

		out, err := f.mediator.Decide(context.Background(), consent.Decision{
			Action: consent.ActionApprove, RequestToken: "tok", Identity: testEmail,
		})
		require.NoError(t, err)
		require.Equal(t, consent.Approved, out.Status)
		require.True(t, out.Redirect)
		require.Equal(t, redirectTo, out.RedirectTo)
		require.False(t, out.LoggedIn)

		require.Len(t, f.grants.calls, 1)
		call := f.grants.calls[0]
		require.Equal(t, testEmail, call.UserID)
		require.Equal(t, map[string]string{"label": testEmail}, call.Metadata)
		require.Equal(t, testEmail, call.Props["email"])
		require.Equal(t, testEmail, call.Props["userId"])
		require.Equal(t, consent.ScopeNames(consent.DefaultScopes), call.Scope)
	})

	t.Run("browser approval shows a page", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", browserRedirect, "usage:read", "admin")

		out, err := f.mediator.Decide(context.Background(), consent.Decision{
			Action: consent.ActionApprove, RequestToken: "tok", Identity: testEmail,
		})
		require.NoError(t, err)
		require.False(t, out.Redirect)
		require.Equal(t, redirectTo, out.RedirectTo)
		require.Equal(t, []string{"usage:read"}, f.grants.calls[0].Scope)
	})

	t.Run("approve without identity needs a login", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", browserRedirect)

		_, err := f.mediator.Decide(context.Background(), consent.Decision{Action: consent.ActionApprove, RequestToken: "tok"})
		require.ErrorIs(t, err, errors.ErrLoginRequired)
		require.Empty(t, f.grants.calls)
		require.Contains(t, f.pending.requests, "tok")
	})

	t.Run("login and approve", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", browserRedirect)

		out, err := f.mediator.Decide(context.Background(), consent.Decision{
			Action: consent.ActionLoginApprove, RequestToken: "tok", Identity: "A@B.com", Credential: "x",
		})
		require.NoError(t, err)
		require.True(t, out.LoggedIn)
		require.Equal(t, testEmail, out.Identity)
		require.Len(t, f.grants.calls, 1)
	})

	t.Run("bad credentials keep the request", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", browserRedirect)

		_, err := f.mediator.Decide(context.Background(), consent.Decision{
			Action: consent.ActionLoginApprove, RequestToken: "tok", Identity: testEmail,
		})
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
		require.Contains(t, f.pending.requests, "tok")
	})

	t.Run("client specific scope grants the catalog", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", "https://claude.ai/callback?x=1", "claudeai")

		out, err := f.mediator.Decide(context.Background(), consent.Decision{
			Action: consent.ActionApprove, RequestToken: "tok", Identity: testEmail,
		})
		require.NoError(t, err)
		require.True(t, out.Redirect)
		require.Equal(t, redirectTo, out.RedirectTo)
		require.Len(t, f.grants.calls, 1)
		require.Equal(t, consent.ScopeNames(consent.DefaultScopes), f.grants.calls[0].Scope)
	})

	t.Run("grant store failure is returned", func(t *testing.T) {
		f := setupTestFixture(t)
		f.grants.err = errors.ErrInvalidGrantContext
		f.park("tok", browserRedirect)

		_, err := f.mediator.Decide(context.Background(), consent.Decision{
			Action: consent.ActionApprove, RequestToken: "tok", Identity: testEmail,
		})
		require.ErrorIs(t, err, errors.ErrInvalidGrantContext)
	})
}

func TestDecideMissingRequest(t *testing.T) {
	for _, action := range []consent.Action{consent.ActionApprove, consent.ActionReject, consent.ActionLoginApprove} {
		t.Run(string(action), func(t *testing.T) {
			f := setupTestFixture(t)
			_, err := f.mediator.Decide(context.Background(), consent.Decision{
				Action: action, RequestToken: "gone", Identity: testEmail, Credential: "x",
			})
			require.ErrorIs(t, err, errors.ErrInvalidGrantContext)
			require.Empty(t, f.grants.calls)
		})
	}

	t.Run("second submission of the same token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.park("tok", browserRedirect)
		d := consent.Decision{Action: consent.ActionApprove, RequestToken: "tok", Identity: testEmail}

		_, err := f.mediator.Decide(context.Background(), d)
		require.NoError(t, err)
		_, err = f.mediator.Decide(context.Background(), d)
		require.ErrorIs(t, err, errors.ErrInvalidGrantContext)
		require.Len(t, f.grants.calls, 1)
	})
}

func TestGrantedScopes(t *testing.T) {
	all := consent.ScopeNames(consent.DefaultScopes)

	t.Run("keeps requested order", func(t *testing.T) {
		require.Equal(t, []string{"esim:read", "devices:read"},
			consent.GrantedScopes([]string{"esim:read", "admin", "devices:read"}, consent.DefaultScopes))
	})

	t.Run("empty request", func(t *testing.T) {
		require.Equal(t, all, consent.GrantedScopes(nil, consent.DefaultScopes))
	})

	t.Run("nothing offered requested", func(t *testing.T) {
		require.Equal(t, all, consent.GrantedScopes([]string{"claudeai"}, consent.DefaultScopes))
	})
}

func TestClassifier(t *testing.T) {
	c := consent.NewClassifier([]string{"claude.ai", " Cursor ", ""})
	require.True(t, c.IsProgrammatic("https://claude.ai/api/mcp/auth_callback"))
	require.True(t, c.IsProgrammatic("cursor://anysphere.cursor-retrieval/oauth"))
	require.False(t, c.IsProgrammatic("https://app.example.com/callback"))
}
