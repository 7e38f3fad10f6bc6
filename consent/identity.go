package consent

import (
	"context"
	"strings"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// IdentityVerifier checks submitted login credentials and returns the
// canonical identity of the user.
type IdentityVerifier interface {
	Verify(ctx context.Context, identity, credential string) (string, error)
}

// AcceptAnyVerifier accepts any non-empty identity and credential. It is the
// demonstration verifier used when no users are configured.
type AcceptAnyVerifier struct{}

func (AcceptAnyVerifier) Verify(_ context.Context, identity, credential string) (string, error) {
	identity = strings.ToLower(strings.TrimSpace(identity))
	if identity == "" || credential == "" {
		return "", errors.ErrInvalidCredentials
	}
	return identity, nil
}

// Classifier tells automated clients apart from browsers by markers in the
// redirect URI.
type Classifier struct {
	markers []string
}

func NewClassifier(markers []string) Classifier {
	c := Classifier{}
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			c.markers = append(c.markers, m)
		}
	}
	return c
}

// IsProgrammatic reports whether redirectURI belongs to an automated client.
func (c Classifier) IsProgrammatic(redirectURI string) bool {
	uri := strings.ToLower(redirectURI)
	for _, m := range c.markers {
		if strings.Contains(uri, m) {
			return true
		}
	}
	return false
}
