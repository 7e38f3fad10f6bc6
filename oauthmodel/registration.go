package oauthmodel

// ClientRegistrationRequest is the RFC 7591 dynamic registration body.
type ClientRegistrationRequest struct {
	ClientName              string                  `json:"client_name,omitempty"`
	ClientURI               string                  `json:"client_uri,omitempty"`
	LogoURI                 string                  `json:"logo_uri,omitempty"`
	RedirectURIs            []string                `json:"redirect_uris"`
	GrantTypes              []GrantType             `json:"grant_types,omitempty"`
	ResponseTypes           []ResponseType          `json:"response_types,omitempty"`
	TokenEndpointAuthMethod TokenEndpointAuthMethod `json:"token_endpoint_auth_method,omitempty"`
	Scope                   string                  `json:"scope,omitempty"`
}

// ClientRegistrationResponse echoes the registered metadata. ClientSecret is
// only ever returned here.
type ClientRegistrationResponse struct {
	ClientID                string                  `json:"client_id"`
	ClientSecret            string                  `json:"client_secret,omitempty"`
	ClientIDIssuedAt        int64                   `json:"client_id_issued_at"`
	ClientSecretExpiresAt   int64                   `json:"client_secret_expires_at"`
	ClientName              string                  `json:"client_name,omitempty"`
	ClientURI               string                  `json:"client_uri,omitempty"`
	LogoURI                 string                  `json:"logo_uri,omitempty"`
	RedirectURIs            []string                `json:"redirect_uris"`
	GrantTypes              []GrantType             `json:"grant_types"`
	ResponseTypes           []ResponseType          `json:"response_types"`
	TokenEndpointAuthMethod TokenEndpointAuthMethod `json:"token_endpoint_auth_method"`
	Scope                   string                  `json:"scope,omitempty"`
}
