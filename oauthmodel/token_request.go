package oauthmodel

// TokenRequest holds parameters for the OAuth2 token request.
// Supports the authorization_code and refresh_token grant types.
type TokenRequest struct {
	GrantType GrantType

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all grant types)
	ClientID string

	// ClientSecret is the secret credential for confidential clients.
	// Security: Never log or expose this value
	ClientSecret string

	// Code is the authorization code received from the authorization endpoint.
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string

	// RedirectURI must repeat the value used at /authorize.
	RedirectURI string

	// CodeVerifier is the PKCE code verifier that matches the code_challenge.
	CodeVerifier string

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Behavior: Rotated on every use
	RefreshToken string
}

// TokenResponse is the JSON body returned by the token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
