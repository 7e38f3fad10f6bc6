package clients

import (
	"slices"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
	"golang.org/x/crypto/bcrypt"
)

type ClientType string

const (
	ClientTypeConfidential ClientType = "confidential" // Can keep secrets (server-side apps)
	ClientTypePublic       ClientType = "public"       // Cannot keep secrets (desktop and browser MCP clients)
)

// Client is a registered OAuth client. Secrets are only stored as bcrypt hashes.
type Client struct {
	ID                      string                             `json:"id"`
	Type                    ClientType                         `json:"type"`
	Name                    string                             `json:"name,omitempty"`
	URI                     string                             `json:"uri,omitempty"`
	LogoURI                 string                             `json:"logoUri,omitempty"`
	SecretHash              string                             `json:"secretHash,omitempty"`
	RedirectURIs            []string                           `json:"redirectUris"`
	GrantTypes              []oauthmodel.GrantType             `json:"grantTypes"`
	ResponseTypes           []oauthmodel.ResponseType          `json:"responseTypes"`
	TokenEndpointAuthMethod oauthmodel.TokenEndpointAuthMethod `json:"tokenEndpointAuthMethod"`
	CreatedAt               time.Time                          `json:"createdAt"`
}

// IsPublic returns true if the client is a public client
func (c *Client) IsPublic() bool {
	return c.Type == ClientTypePublic
}

// HasRedirectURI reports whether uri exactly matches a registered redirect URI.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// AllowsGrant reports whether the client registered for the grant type.
func (c *Client) AllowsGrant(grant oauthmodel.GrantType) bool {
	return slices.Contains(c.GrantTypes, grant)
}

// CheckSecret compares secret with the stored hash. Public clients have no
// secret and never match.
func (c *Client) CheckSecret(secret string) bool {
	if c.IsPublic() || c.SecretHash == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)) == nil
}

// HashSecret hashes a client secret for storage.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// Metadata returns the display information shown on the consent screen.
func (c *Client) Metadata() oauthmodel.ClientMetadata {
	return oauthmodel.ClientMetadata{Name: c.Name, URI: c.URI, LogoURI: c.LogoURI}
}
