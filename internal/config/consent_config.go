package config

const (
	programmaticMarkersVar = "PROGRAMMATIC_CLIENT_MARKERS"
	consentUsersVar        = "CONSENT_USERS"
)

// DefaultProgrammaticMarkers are redirect URI fragments that identify MCP
// client integrations which cannot render HTML status pages.
var DefaultProgrammaticMarkers = []string{"claude.ai", "claude.com", "anthropic.com", "cursor", "vscode"}

type ConsentConfig interface {
	GetProgrammaticClientMarkers() []string
	// GetConsentUsers returns "email:bcrypt-hash" entries, "!" prefixed when
	// blocked. When empty any non-empty identity is accepted at login.
	GetConsentUsers() []string
}

type Consent struct{}

var _ ConsentConfig = Consent{}

func (Consent) GetProgrammaticClientMarkers() []string {
	return GetEnvList(programmaticMarkersVar, DefaultProgrammaticMarkers)
}

func (Consent) GetConsentUsers() []string {
	return GetEnvList(consentUsersVar, nil)
}
