// Package consent turns a submitted consent form into a grant or a denial.
package consent

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

const deniedDescription = "The user denied the authorization request"

// PendingRequests hands back the authorization request parked behind a
// request token. Take consumes it.
type PendingRequests interface {
	Take(ctx context.Context, token string) (*oauthmodel.AuthorizationRequest, error)
}

// GrantStore completes an approved authorization.
type GrantStore interface {
	CompleteAuthorization(ctx context.Context, req oauthmodel.CompletionRequest) (*oauthmodel.CompletionResult, error)
}

// Status is the terminal state of a decision.
type Status int

const (
	Denied Status = iota
	Approved
)

func (s Status) String() string {
	if s == Approved {
		return "approved"
	}
	return "denied"
}

// Outcome says how to answer the browser or client. When Redirect is true
// the response is a bare 302 to RedirectTo; otherwise a status page is shown
// that links to RedirectTo.
type Outcome struct {
	Status     Status
	Redirect   bool
	RedirectTo string
	Request    *oauthmodel.AuthorizationRequest
	// Identity is set when the decision authenticated a user.
	Identity string
	// LoggedIn is true when the identity was established by this decision.
	LoggedIn bool
}

// Mediator runs the consent state machine.
type Mediator struct {
	pending    PendingRequests
	grants     GrantStore
	verifier   IdentityVerifier
	classifier Classifier
	scopes     []Scope
}

type Option func(*Mediator)

// WithVerifier replaces the AcceptAnyVerifier.
func WithVerifier(v IdentityVerifier) Option {
	return func(m *Mediator) {
		m.verifier = v
	}
}

// WithScopes replaces DefaultScopes.
func WithScopes(scopes []Scope) Option {
	return func(m *Mediator) {
		m.scopes = scopes
	}
}

// WithClientMarkers replaces the programmatic client markers.
func WithClientMarkers(markers []string) Option {
	return func(m *Mediator) {
		m.classifier = NewClassifier(markers)
	}
}

func NewMediator(pending PendingRequests, grants GrantStore, options ...Option) *Mediator {
	m := &Mediator{
		pending:    pending,
		grants:     grants,
		verifier:   AcceptAnyVerifier{},
		classifier: NewClassifier(config.DefaultProgrammaticMarkers),
		scopes:     DefaultScopes,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Scopes is the offered-scope catalog.
func (m *Mediator) Scopes() []Scope {
	return m.scopes
}

// IsProgrammatic reports whether redirectURI belongs to an automated client.
func (m *Mediator) IsProgrammatic(redirectURI string) bool {
	return m.classifier.IsProgrammatic(redirectURI)
}

// Decide applies d. Credentials are checked before the pending request is
// consumed so a mistyped password does not burn the request.
func (m *Mediator) Decide(ctx context.Context, d Decision) (*Outcome, error) {
	identity := d.Identity
	loggedIn := false

	switch d.Action {
	case ActionLoginApprove:
		id, err := m.verifier.Verify(ctx, d.Identity, d.Credential)
		if err != nil {
			if errors.Is(err, errors.ErrInvalidCredentials) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
		}
		identity, loggedIn = id, true
	case ActionApprove:
		if identity == "" {
			return nil, errors.ErrLoginRequired
		}
	case ActionReject:
	default:
		return nil, errors.Wrapf(errors.ErrMalformedRequest, "unknown consent action %q", d.Action)
	}

	req, err := m.pending.Take(ctx, d.RequestToken)
	if err != nil || req == nil {
		return nil, errors.Wrapf(errors.ErrInvalidGrantContext, "request token not found or expired")
	}

	if d.Action == ActionReject {
		return m.deny(req), nil
	}
	return m.approve(ctx, req, identity, loggedIn)
}

func (m *Mediator) deny(req *oauthmodel.AuthorizationRequest) *Outcome {
	out := &Outcome{Status: Denied, Request: req}
	if !m.classifier.IsProgrammatic(req.RedirectURI) {
		return out
	}
	target, err := deniedRedirect(req)
	if err != nil {
		log.Warn().Err(err).Str("redirect_uri", req.RedirectURI).Msg("cannot build denial redirect")
		return out
	}
	out.Redirect = true
	out.RedirectTo = target
	return out
}

func (m *Mediator) approve(ctx context.Context, req *oauthmodel.AuthorizationRequest, identity string, loggedIn bool) (*Outcome, error) {
	scope := GrantedScopes(req.Scope, m.scopes)

	result, err := m.grants.CompleteAuthorization(ctx, oauthmodel.CompletionRequest{
		Request:  *req,
		UserID:   identity,
		Metadata: map[string]string{"label": identity},
		Scope:    scope,
		Props: map[string]any{
			"email":  identity,
			"userId": identity,
		},
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("client_id", req.ClientID).Str("user", identity).Strs("scope", scope).Msg("authorization approved")
	return &Outcome{
		Status:     Approved,
		Redirect:   m.classifier.IsProgrammatic(req.RedirectURI),
		RedirectTo: result.RedirectTo,
		Request:    req,
		Identity:   identity,
		LoggedIn:   loggedIn,
	}, nil
}

func deniedRedirect(req *oauthmodel.AuthorizationRequest) (string, error) {
	u, err := url.Parse(req.RedirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("error", oauthmodel.ErrorCodeAccessDenied)
	q.Set("error_description", deniedDescription)
	if req.State != "" {
		q.Set("state", req.State)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
