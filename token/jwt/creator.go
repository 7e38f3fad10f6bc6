// Package jwt issues and verifies the HS256 access tokens presented to the
// MCP endpoint.
package jwt

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// AccessClaims are the claims the server relies on after verification.
type AccessClaims struct {
	GrantID   string
	ClientID  string
	Subject   string
	Scope     []string
	ExpiresAt time.Time
}

// Creator handles access token creation and verification
type Creator struct {
	config  config.OAuthConfig
	issuer  string
	nowTime func() time.Time
}

type Option func(*Creator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Creator) {
		c.nowTime = nowFunc
	}
}

// NewCreator creates a new JWT creator. issuer doubles as the audience,
// since this server is both the authorization and the resource server.
func NewCreator(cfg config.OAuthConfig, issuer string, options ...Option) *Creator {
	c := &Creator{
		config:  cfg,
		issuer:  issuer,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// CreateAccessToken signs an access token bound to a grant. It returns the
// token and its lifetime.
func (c *Creator) CreateAccessToken(grantID, clientID, userID string, scope []string) (string, time.Duration, error) {
	expiry := c.config.GetDefaultAccessTokenExpiry()
	now := c.nowTime()
	claims := jwtlib.MapClaims{
		"iss":       c.issuer,
		"aud":       c.issuer,
		"sub":       userID,
		"client_id": clientID,
		"grant_id":  grantID,
		"scope":     strings.Join(scope, " "),
		"iat":       now.Unix(),
		"exp":       now.Add(expiry).Unix(),
		"jti":       uuid.New().String(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.config.GetTokenSigningKey())
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, expiry, nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry.
func (c *Creator) ParseAccessToken(raw string) (*AccessClaims, error) {
	token, err := jwtlib.Parse(raw,
		func(t *jwtlib.Token) (interface{}, error) {
			return c.config.GetTokenSigningKey(), nil
		},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(c.issuer),
		jwtlib.WithAudience(c.issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(c.nowTime),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, errors.Wrapf(errors.ErrTokenExpired, "access token")
		}
		return nil, errors.Wrapf(errors.ErrInvalidToken, "access token: %v", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "unexpected claims type")
	}

	grantID, _ := claims["grant_id"].(string)
	if grantID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "missing grant_id")
	}
	clientID, _ := claims["client_id"].(string)
	scope, _ := claims["scope"].(string)
	sub, _ := claims.GetSubject()
	exp, _ := claims.GetExpirationTime()

	ac := &AccessClaims{
		GrantID:  grantID,
		ClientID: clientID,
		Subject:  sub,
		Scope:    strings.Fields(scope),
	}
	if exp != nil {
		ac.ExpiresAt = exp.Time
	}
	return ac, nil
}
