package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Acceleronix/cmp-auth-mcp-server/clients"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
	"github.com/Acceleronix/cmp-auth-mcp-server/token/jwt"
	"github.com/Acceleronix/cmp-auth-mcp-server/token/refresh"
)

const (
	codeKeyPrefix    = "code:"
	bearerTokenType  = "Bearer"
	clientSecretSize = 32
)

// authorizationCode is stored under the hash of the issued code until it is
// exchanged or expires.
type authorizationCode struct {
	GrantID             string                    `json:"grantId"`
	ClientID            string                    `json:"clientId"`
	RedirectURI         string                    `json:"redirectUri"`
	CodeChallenge       string                    `json:"codeChallenge,omitempty"`
	CodeChallengeMethod oauthmodel.CodeMethodType `json:"codeChallengeMethod,omitempty"`
	IssuedAt            time.Time                 `json:"issuedAt"`
}

// Repos holds all repository dependencies for the AuthorizationService
type Repos struct {
	Clients clients.Repo // Registered OAuth clients
	Store   kv.Store     // Grants, codes and refresh tokens
}

// AuthorizationService is the grant store: it parses authorization requests,
// completes approved grants and runs the token endpoint.
type AuthorizationService struct {
	repos     Repos
	config    config.OAuthConfig
	validator *Validator
	tokens    *jwt.Creator
	refresh   *refresh.Manager
	nowTime   func() time.Time
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithRequirePKCE enforces PKCE for confidential clients too.
func WithRequirePKCE(required bool) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.validator = NewValidator(required)
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
// issuer is the public base URL of the server.
func NewAuthorizationService(
	repos Repos,
	cfg config.OAuthConfig,
	issuer string,
	options ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if repos.Clients == nil {
		return nil, errors.New("[NewAuthorizationService] Clients repo is required")
	}
	if repos.Store == nil {
		return nil, errors.New("[NewAuthorizationService] Store is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewAuthorizationService] config is required")
	}
	if len(cfg.GetTokenSigningKey()) == 0 {
		return nil, errors.New("[NewAuthorizationService] token signing key is required")
	}

	as := &AuthorizationService{
		repos:     repos,
		config:    cfg,
		validator: NewValidator(false),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(as)
	}

	as.tokens = jwt.NewCreator(cfg, issuer, jwt.WithNowTime(as.nowTime))
	as.refresh = refresh.NewManager(repos.Store, cfg, refresh.WithNowTime(as.nowTime))
	return as, nil
}

// ParseAuthRequest decodes an inbound /authorize request and matches it to a
// registered client. Every failure is reported as ErrMalformedRequest.
func (as *AuthorizationService) ParseAuthRequest(ctx context.Context, r *http.Request) (*oauthmodel.AuthorizationRequest, error) {
	req, err := oauthmodel.ParseAuthorizationRequest(r.URL.Query())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedRequest, err)
	}

	client, err := as.repos.Clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: client %q: %w", errors.ErrMalformedRequest, req.ClientID, err)
	}

	if err := as.validator.ValidateAuthorizationRequest(req, client); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrMalformedRequest, err)
	}

	req.Client = client.Metadata()
	return req, nil
}

// LookupClient returns a registered client.
func (as *AuthorizationService) LookupClient(ctx context.Context, clientID string) (*clients.Client, error) {
	return as.repos.Clients.Get(ctx, clientID)
}

// CompleteAuthorization persists the grant for an approved request, issues a
// single-use authorization code and returns the client redirect carrying the
// code and state.
func (as *AuthorizationService) CompleteAuthorization(ctx context.Context, completion oauthmodel.CompletionRequest) (*oauthmodel.CompletionResult, error) {
	req := completion.Request
	if completion.UserID == "" {
		return nil, errors.Wrapf(errors.ErrLoginRequired, "[CompleteAuthorization]")
	}

	// The request must still be valid for a still-registered client
	client, err := as.repos.Clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidGrantContext, err)
	}
	if err := as.validator.ValidateAuthorizationRequest(&req, client); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidGrantContext, err)
	}

	redirect, err := url.Parse(req.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidGrantContext, err)
	}

	grant := &Grant{
		ID:        uuid.New().String(),
		ClientID:  client.ID,
		UserID:    completion.UserID,
		Scope:     completion.Scope,
		Metadata:  completion.Metadata,
		Props:     completion.Props,
		CreatedAt: as.nowTime(),
	}
	if err := as.putGrant(ctx, grant); err != nil {
		return nil, errors.Wrapf(err, "[CompleteAuthorization] store grant")
	}

	code, err := randomCode(as.config.GetCodeGenerationLength())
	if err != nil {
		return nil, errors.Wrapf(err, "[CompleteAuthorization] generate code")
	}
	if err := kv.PutJSON(ctx, as.repos.Store, codeKeyPrefix+refresh.HashToken(code), &authorizationCode{
		GrantID:             grant.ID,
		ClientID:            client.ID,
		RedirectURI:         req.RedirectURI,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		IssuedAt:            as.nowTime(),
	}, as.config.GetAuthCodeTimeout()); err != nil {
		return nil, errors.Wrapf(err, "[CompleteAuthorization] store code")
	}

	q := redirect.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	redirect.RawQuery = q.Encode()

	return &oauthmodel.CompletionResult{RedirectTo: redirect.String()}, nil
}

// Token handles the OAuth 2.0 token request.
func (as *AuthorizationService) Token(ctx context.Context, parameters oauthmodel.TokenRequest) (*oauthmodel.TokenResponse, error) {
	client, err := as.authenticateClient(ctx, parameters.ClientID, parameters.ClientSecret)
	if err != nil {
		return nil, err
	}

	switch parameters.GrantType {
	case oauthmodel.AuthorizationCodeGrant:
		return as.exchangeCode(ctx, client, parameters)
	case oauthmodel.RefreshTokenGrant:
		return as.refreshTokens(ctx, client, parameters)
	}
	return nil, errors.Wrapf(errors.ErrUnsupportedGrantType, "%q", parameters.GrantType)
}

func (as *AuthorizationService) authenticateClient(ctx context.Context, clientID, secret string) (*clients.Client, error) {
	client, err := as.repos.Clients.Get(ctx, clientID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidClient, "unknown client %q", clientID)
	}
	if !client.IsPublic() && !client.CheckSecret(secret) {
		return nil, errors.Wrapf(errors.ErrInvalidClient, "client authentication failed")
	}
	return client, nil
}

func (as *AuthorizationService) exchangeCode(ctx context.Context, client *clients.Client, parameters oauthmodel.TokenRequest) (*oauthmodel.TokenResponse, error) {
	if parameters.Code == "" {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "code is required")
	}

	var stored authorizationCode
	if err := kv.TakeJSON(ctx, as.repos.Store, codeKeyPrefix+refresh.HashToken(parameters.Code), &stored); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, errors.Wrapf(errors.ErrInvalidGrant, "authorization code unknown, used or expired")
		}
		return nil, err
	}

	if stored.ClientID != client.ID {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "code was issued to another client")
	}
	if parameters.RedirectURI != "" && parameters.RedirectURI != stored.RedirectURI {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "redirect_uri mismatch")
	}
	if as.nowTime().Sub(stored.IssuedAt) > as.config.GetAuthCodeTimeout() {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "authorization code expired")
	}
	if !checkCodeChallenge(stored.CodeChallenge, parameters.CodeVerifier, stored.CodeChallengeMethod) {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "code verifier does not match challenge")
	}

	grant, err := as.GetGrant(ctx, stored.GrantID)
	if err != nil {
		return nil, err
	}
	return as.issueTokens(ctx, grant)
}

func (as *AuthorizationService) refreshTokens(ctx context.Context, client *clients.Client, parameters oauthmodel.TokenRequest) (*oauthmodel.TokenResponse, error) {
	rt, err := as.refresh.Take(ctx, parameters.RefreshToken)
	if err != nil {
		return nil, err
	}
	if rt.ClientID != client.ID {
		return nil, errors.Wrapf(errors.ErrInvalidGrant, "refresh token was issued to another client")
	}
	grant, err := as.GetGrant(ctx, rt.GrantID)
	if err != nil {
		return nil, err
	}
	return as.issueTokens(ctx, grant)
}

func (as *AuthorizationService) issueTokens(ctx context.Context, grant *Grant) (*oauthmodel.TokenResponse, error) {
	accessToken, expiry, err := as.tokens.CreateAccessToken(grant.ID, grant.ClientID, grant.UserID, grant.Scope)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthorizationService.issueTokens] access token")
	}
	refreshToken, err := as.refresh.Create(ctx, grant.ID, grant.ClientID, grant.UserID, grant.Scope)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthorizationService.issueTokens] refresh token")
	}
	return &oauthmodel.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    bearerTokenType,
		ExpiresIn:    int64(expiry.Seconds()),
		RefreshToken: refreshToken,
		Scope:        oauthmodel.JoinScopes(grant.Scope),
	}, nil
}

// ValidateAccessToken verifies a bearer token and returns the grant behind
// it. Tokens whose grant was revoked are rejected.
func (as *AuthorizationService) ValidateAccessToken(ctx context.Context, raw string) (*Grant, error) {
	claims, err := as.tokens.ParseAccessToken(raw)
	if err != nil {
		return nil, err
	}
	grant, err := as.GetGrant(ctx, claims.GrantID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "grant revoked")
	}
	return grant, nil
}

// RevokeToken revokes the grant behind an access or refresh token. Unknown
// tokens are not an error (RFC 7009).
func (as *AuthorizationService) RevokeToken(ctx context.Context, rawToken, clientID, clientSecret string) error {
	client, err := as.authenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}

	if claims, err := as.tokens.ParseAccessToken(rawToken); err == nil {
		if claims.ClientID != client.ID {
			return nil
		}
		return as.deleteGrant(ctx, claims.GrantID)
	}

	rt, err := as.refresh.Take(ctx, rawToken)
	if err != nil {
		return nil
	}
	if rt.ClientID != client.ID {
		return nil
	}
	return as.deleteGrant(ctx, rt.GrantID)
}

// RegisterClient implements RFC 7591 dynamic client registration.
func (as *AuthorizationService) RegisterClient(ctx context.Context, reg oauthmodel.ClientRegistrationRequest) (*oauthmodel.ClientRegistrationResponse, error) {
	if len(reg.RedirectURIs) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRedirectURI, "redirect_uris is required")
	}
	for _, uri := range reg.RedirectURIs {
		u, err := url.Parse(uri)
		if err != nil || !u.IsAbs() || u.Fragment != "" {
			return nil, errors.Wrapf(errors.ErrInvalidRedirectURI, "%q", uri)
		}
	}

	grantTypes := reg.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = []oauthmodel.GrantType{oauthmodel.AuthorizationCodeGrant, oauthmodel.RefreshTokenGrant}
	}
	for _, gt := range grantTypes {
		if gt != oauthmodel.AuthorizationCodeGrant && gt != oauthmodel.RefreshTokenGrant {
			return nil, errors.Wrapf(errors.ErrUnsupportedGrantType, "%q", gt)
		}
	}
	responseTypes := reg.ResponseTypes
	if len(responseTypes) == 0 {
		responseTypes = []oauthmodel.ResponseType{oauthmodel.CodeResponseType}
	}

	authMethod := reg.TokenEndpointAuthMethod
	if authMethod == "" {
		authMethod = oauthmodel.AuthMethodClientSecretBasic
	}

	client := &clients.Client{
		ID:                      uuid.New().String(),
		Type:                    clients.ClientTypeConfidential,
		Name:                    reg.ClientName,
		URI:                     reg.ClientURI,
		LogoURI:                 reg.LogoURI,
		RedirectURIs:            reg.RedirectURIs,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		TokenEndpointAuthMethod: authMethod,
		CreatedAt:               as.nowTime(),
	}

	var secret string
	switch authMethod {
	case oauthmodel.AuthMethodNone:
		client.Type = clients.ClientTypePublic
	case oauthmodel.AuthMethodClientSecretBasic, oauthmodel.AuthMethodClientSecretPost:
		raw := make([]byte, clientSecretSize)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Wrapf(err, "[RegisterClient] generate secret")
		}
		secret = hex.EncodeToString(raw)
		hash, err := clients.HashSecret(secret)
		if err != nil {
			return nil, errors.Wrapf(err, "[RegisterClient] hash secret")
		}
		client.SecretHash = hash
	default:
		return nil, errors.Wrapf(errors.ErrInvalidClient, "unsupported token_endpoint_auth_method %q", authMethod)
	}

	if err := as.repos.Clients.Upsert(ctx, client); err != nil {
		return nil, errors.Wrapf(err, "[RegisterClient] store client")
	}

	return &oauthmodel.ClientRegistrationResponse{
		ClientID:                client.ID,
		ClientSecret:            secret,
		ClientIDIssuedAt:        client.CreatedAt.Unix(),
		ClientName:              client.Name,
		ClientURI:               client.URI,
		LogoURI:                 client.LogoURI,
		RedirectURIs:            client.RedirectURIs,
		GrantTypes:              client.GrantTypes,
		ResponseTypes:           client.ResponseTypes,
		TokenEndpointAuthMethod: client.TokenEndpointAuthMethod,
		Scope:                   reg.Scope,
	}, nil
}

func randomCode(size int) (string, error) {
	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func checkCodeChallenge(storedChallenge, verifier string, method oauthmodel.CodeMethodType) bool {
	if storedChallenge == "" && verifier == "" { // No PKCE code challenge
		return true
	}
	if verifier == "" {
		return false
	}
	switch method {
	case oauthmodel.CodeMethodTypeS256:
		return oauth2.S256ChallengeFromVerifier(verifier) == storedChallenge
	case oauthmodel.CodeMethodTypePlain:
		return storedChallenge == verifier
	}
	return false
}
