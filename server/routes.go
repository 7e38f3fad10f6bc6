package server

import "net/http"

func (s *Server) initRoutes() {
	// Consent flow (HTML)
	s.RegisterRouteHandler("GET "+RouteAuthorize, ChainMiddleware(s.Authorize(), s.HTMLMiddleWare(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteApprove, ChainMiddleware(s.Approve(), s.HTMLMiddleWare(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.Logout(), s.HTMLMiddleWare()...))

	// OAuth2 API routes
	s.RegisterRouteHandler("POST "+RouteToken, ChainMiddleware(s.Token(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.Register(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteRevoke, ChainMiddleware(s.Revoke(), s.APIMiddleware(s.RateLimitMiddleware)...))

	// Discovery
	s.RegisterRouteHandler("GET "+RouteWellKnownAuthServer, ChainMiddleware(s.AuthorizationServerMetadata(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWellKnownProtectedResource, ChainMiddleware(s.ProtectedResourceMetadata(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWellKnownProtectedResource+RouteMCP, ChainMiddleware(s.ProtectedResourceMetadata(), s.APIMiddleware()...))

	// Browser based MCP clients preflight the API routes
	for _, path := range []string{RouteToken, RouteRegister, RouteRevoke, RouteWellKnownAuthServer, RouteWellKnownProtectedResource} {
		s.RegisterRouteHandler("OPTIONS "+path, ChainMiddleware(preflightHandler, s.APIMiddleware()...))
	}

	// MCP endpoint: GET, POST, DELETE and preflight
	s.RegisterRouteHandler(RouteMCP, ChainMiddleware(s.mcp.ServeHTTP, s.APIMiddleware(s.RequireBearer())...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.Health())
}

// preflightHandler is only reached when CorsMiddleware did not answer.
func preflightHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
