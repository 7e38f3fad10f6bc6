package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/auth"
	"github.com/Acceleronix/cmp-auth-mcp-server/clients"
	"github.com/Acceleronix/cmp-auth-mcp-server/consent"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/config"
	"github.com/Acceleronix/cmp-auth-mcp-server/kv"
	"github.com/Acceleronix/cmp-auth-mcp-server/server/authflowrepo"
	"github.com/Acceleronix/cmp-auth-mcp-server/server/loginsession"
	"github.com/Acceleronix/cmp-auth-mcp-server/session"
	"github.com/Acceleronix/cmp-auth-mcp-server/tools"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Dependencies are the collaborators the server is built from.
type Dependencies struct {
	Store      kv.Store                 // Grants, codes, tokens, pending requests, login sessions
	Clients    clients.Repo             // Defaults to a kv backed repo on Store
	Verifier   consent.IdentityVerifier // Defaults to consent.AcceptAnyVerifier
	NewAdapter session.AdapterFactory   // Builds the CMP API client for each MCP session
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	baseURL       string
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	auth          *auth.AuthorizationService
	mediator      *consent.Mediator
	pending       authflowrepo.Repo
	loginSessions loginsession.Repo
	sessions      *session.Manager
	mcp           *mcpserver.StreamableHTTPServer
	limiter       *ipRateLimiter
	trustProxy    bool
	templates     map[string]*template.Template
	nowTime       func() time.Time
}

type Option func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, deps Dependencies, options ...Option) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("[Server New] store is required")
	}
	if deps.NewAdapter == nil {
		return nil, fmt.Errorf("[Server New] API adapter factory is required")
	}
	if deps.Clients == nil {
		deps.Clients = clients.NewKVRepo(deps.Store)
	}
	if deps.Verifier == nil {
		deps.Verifier = consent.AcceptAnyVerifier{}
	}

	s := &Server{
		env:     cfg.GetEnv(),
		baseURL: strings.TrimSuffix(cfg.GetBaseURL(), "/"),
		mux:     http.NewServeMux(),
		config:  cfg,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	authService, err := auth.NewAuthorizationService(
		auth.Repos{Clients: deps.Clients, Store: deps.Store},
		cfg,
		s.baseURL,
		auth.WithNowTime(s.nowTime),
		auth.WithRequirePKCE(cfg.GetRequirePKCE()),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create authorization service: %w", err)
	}
	s.auth = authService

	s.pending = authflowrepo.NewKVRepo(deps.Store, cfg.GetPendingRequestTimeout(), authflowrepo.WithNowTime(s.nowTime))
	s.loginSessions = loginsession.NewKVRepo(deps.Store, cfg.GetMaxSessionAge(), loginsession.WithNowTime(s.nowTime))
	s.mediator = consent.NewMediator(s.pending, s.auth,
		consent.WithVerifier(deps.Verifier),
		consent.WithClientMarkers(cfg.GetProgrammaticClientMarkers()),
	)

	if s.templates, err = parseTemplates(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	registry, err := tools.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to build tool registry: %w", err)
	}
	s.sessions = session.NewManager(registry, deps.NewAdapter)
	s.mcp = s.newMCPServer(cfg.GetAppName())

	if cfg.GetEnableRateLimiting() {
		s.limiter = newIPRateLimiter(cfg.GetRateLimit(), cfg.GetRateBurst())
		s.trustProxy = cfg.GetTrustProxyHeaders()
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) newMCPServer(name string) *mcpserver.StreamableHTTPServer {
	hooks := &mcpserver.Hooks{}
	s.sessions.AttachHooks(hooks)

	mcpServer := mcpserver.NewMCPServer(name, Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
		mcpserver.WithHooks(hooks),
	)
	s.sessions.Register(mcpServer)

	return mcpserver.NewStreamableHTTPServer(mcpServer,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if grant := auth.GrantFromContext(r.Context()); grant != nil {
				return auth.WithGrant(ctx, grant)
			}
			return ctx
		}),
	)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Sessions exposes the MCP session contexts.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "*", route
		}
		log.Debug().Str("method", method).Str("path", path).Msg("route")
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
