package consent

import "github.com/Acceleronix/cmp-auth-mcp-server/oauthmodel"

// Variant selects which consent form is rendered.
type Variant int

const (
	// LoggedOut is the combined login and approval form.
	LoggedOut Variant = iota
	// LoggedIn is the approval-only form.
	LoggedIn
)

func (v Variant) String() string {
	if v == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Screen is everything the consent page needs.
type Screen struct {
	Variant Variant
	Request *oauthmodel.AuthorizationRequest
	Scopes  []Scope
}

// SelectScreen picks the consent form. It has no side effects.
func SelectScreen(isAuthenticated bool, req *oauthmodel.AuthorizationRequest, available []Scope) Screen {
	variant := LoggedOut
	if isAuthenticated {
		variant = LoggedIn
	}
	return Screen{
		Variant: variant,
		Request: req,
		Scopes:  append([]Scope(nil), available...),
	}
}
