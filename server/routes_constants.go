package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Consent flow
	RouteAuthorize = "/authorize"
	RouteApprove   = "/approve"
	RouteLogout    = "/logout"

	// OAuth2 endpoints
	RouteToken    = "/token"
	RouteRegister = "/register"
	RouteRevoke   = "/revoke"

	// Discovery
	RouteWellKnownAuthServer        = "/.well-known/oauth-authorization-server"
	RouteWellKnownProtectedResource = "/.well-known/oauth-protected-resource"

	// MCP streamable HTTP endpoint
	RouteMCP = "/mcp"

	RouteHealth = "/healthz"
)
