package oauthmodel

// CompletionRequest is what the consent step hands to the grant store once
// the user approved.
type CompletionRequest struct {
	Request  AuthorizationRequest `json:"request"`
	UserID   string               `json:"userId"`
	Metadata map[string]string    `json:"metadata"`
	Scope    []string             `json:"scope"`
	Props    map[string]any       `json:"props"`
}

// CompletionResult carries the client redirect, including code and state.
type CompletionResult struct {
	RedirectTo string `json:"redirectTo"`
}
