package auth

import (
	"fmt"

	"github.com/Acceleronix/cmp-auth-mcp-server/clients"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"
)

// Validator holds the authorization request rules that need the registered
// client in addition to the request itself.
type Validator struct {
	requirePKCE bool
}

// NewValidator creates a Validator. requirePKCE extends the PKCE requirement
// from public clients to every client.
func NewValidator(requirePKCE bool) *Validator {
	return &Validator{requirePKCE: requirePKCE}
}

// ValidateAuthorizationRequest checks a parsed request against its client.
func (v *Validator) ValidateAuthorizationRequest(req *oauthmodel.AuthorizationRequest, client *clients.Client) error {
	if client == nil {
		return fmt.Errorf("client not found")
	}

	if !client.HasRedirectURI(req.RedirectURI) {
		return errors.Wrapf(errors.ErrInvalidRedirectURI, "%s not registered for client %s", req.RedirectURI, client.ID)
	}

	if len(client.ResponseTypes) > 0 && !containsResponseType(client.ResponseTypes, req.ResponseType) {
		return fmt.Errorf("response type %q not registered for client", req.ResponseType)
	}

	required := v.requirePKCE || client.IsPublic()
	if err := v.ValidatePKCE(req.CodeChallenge, string(req.CodeChallengeMethod), required); err != nil {
		return err
	}
	return nil
}

// ValidatePKCE validates the PKCE parameters
func (v *Validator) ValidatePKCE(challenge, method string, required bool) error {
	if challenge == "" && method == "" {
		if required {
			return errors.Wrapf(errors.ErrInvalidCodeChallenge, "PKCE required")
		}
		return nil
	}
	if challenge == "" {
		return errors.Wrapf(errors.ErrInvalidCodeChallenge, "code_challenge_method without code_challenge")
	}
	switch oauthmodel.CodeMethodType(method) {
	case oauthmodel.CodeMethodTypeS256, oauthmodel.CodeMethodTypePlain:
		return nil
	}
	return errors.Wrapf(errors.ErrInvalidCodeChallenge, "unsupported method %q", method)
}

func containsResponseType(types []oauthmodel.ResponseType, t oauthmodel.ResponseType) bool {
	for _, rt := range types {
		if rt == t {
			return true
		}
	}
	return false
}
