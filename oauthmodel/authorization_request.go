package oauthmodel

import (
	"fmt"
	"net/url"
	"strings"
)

// ClientMetadata is the display information of the client asking for access.
type ClientMetadata struct {
	Name    string `json:"name,omitempty"`
	URI     string `json:"uri,omitempty"`
	LogoURI string `json:"logoUri,omitempty"`
}

// AuthorizationRequest is the canonical form of an inbound /authorize call.
// Once parsed it is treated as immutable and lives for one authorize to
// approve round trip.
type AuthorizationRequest struct {
	// ResponseType must be "code".
	ResponseType ResponseType `json:"responseType"`

	// ClientID identifies the registered MCP client.
	// Required: Yes
	ClientID string `json:"clientId"`

	// RedirectURI is where the authorization response is sent.
	// Required: Yes
	// Security: Must exactly match a URI registered for the client
	RedirectURI string `json:"redirectUri"`

	// Scope is the ordered list of requested scope names.
	Scope []string `json:"scope"`

	// State is echoed back to the client untouched.
	State string `json:"state,omitempty"`

	// CodeChallenge and CodeChallengeMethod carry the PKCE challenge.
	// Required: Yes for public clients
	CodeChallenge       string         `json:"codeChallenge,omitempty"`
	CodeChallengeMethod CodeMethodType `json:"codeChallengeMethod,omitempty"`

	// Resource is the RFC 8707 resource indicator, when supplied.
	Resource string `json:"resource,omitempty"`

	// Client is filled in from the client registry after parsing.
	Client ClientMetadata `json:"client"`
}

// ParseAuthorizationRequest decodes the query parameters of an authorization
// request. It performs the structural checks only; matching the request to a
// registered client is the caller's job.
func ParseAuthorizationRequest(values url.Values) (*AuthorizationRequest, error) {
	req := &AuthorizationRequest{
		ResponseType:        ResponseType(strings.TrimSpace(values.Get("response_type"))),
		ClientID:            strings.TrimSpace(values.Get("client_id")),
		RedirectURI:         strings.TrimSpace(values.Get("redirect_uri")),
		Scope:               SplitScopes(values.Get("scope")),
		State:               values.Get("state"),
		CodeChallenge:       strings.TrimSpace(values.Get("code_challenge")),
		CodeChallengeMethod: CodeMethodType(strings.TrimSpace(values.Get("code_challenge_method"))),
		Resource:            values.Get("resource"),
	}

	if req.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if req.RedirectURI == "" {
		return nil, ErrMissingRedirectURI
	}
	if u, err := url.Parse(req.RedirectURI); err != nil || !u.IsAbs() {
		return nil, ErrInvalidRedirectURI
	}
	if req.ResponseType == "" {
		req.ResponseType = CodeResponseType
	}
	if req.ResponseType != CodeResponseType {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResponseType, req.ResponseType)
	}
	if req.CodeChallenge != "" && req.CodeChallengeMethod == "" {
		req.CodeChallengeMethod = CodeMethodTypePlain
	}
	if err := validateCodeChallenge(req.CodeChallenge, req.CodeChallengeMethod); err != nil {
		return nil, err
	}
	return req, nil
}

// ScopeString joins the requested scopes the way they travel on the wire.
func (r *AuthorizationRequest) ScopeString() string {
	return JoinScopes(r.Scope)
}

func validateCodeChallenge(challenge string, method CodeMethodType) error {
	if challenge == "" {
		return nil
	}
	switch method {
	case CodeMethodTypeS256, CodeMethodTypePlain:
	default:
		return ErrInvalidCodeChallengeMethod
	}
	// RFC 7636 bounds the verifier to 43..128 characters
	if len(challenge) < 43 || len(challenge) > 128 {
		return ErrInvalidCodeChallenge
	}
	return nil
}

// SplitScopes splits a space separated scope string, dropping duplicates
// while keeping the original order.
func SplitScopes(scope string) []string {
	fields := strings.Fields(scope)
	if len(fields) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(fields))
	result := make([]string, 0, len(fields))
	for _, s := range fields {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// JoinScopes is the inverse of SplitScopes.
func JoinScopes(scope []string) string {
	return strings.Join(scope, " ")
}
