// Package session binds the tool gateway to MCP sessions. Each MCP session
// gets its own API client adapter and dispatcher, created on first use and
// released when the session ends.
package session

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Acceleronix/cmp-auth-mcp-server/auth"
	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
	"github.com/Acceleronix/cmp-auth-mcp-server/tools"
)

// AdapterFactory builds the API client for a new session. It fails with
// ErrMissingCredentials when the upstream credentials are not configured.
type AdapterFactory func() (tools.APIClient, error)

// Context is the state owned by one MCP session.
type Context struct {
	ID         string
	dispatcher *tools.Dispatcher
}

// Dispatch runs a tool call within this session.
func (c *Context) Dispatch(ctx context.Context, name string, args any) tools.Result {
	return c.dispatcher.Dispatch(ctx, name, args)
}

// Manager tracks the live session contexts.
type Manager struct {
	registry   *tools.Registry
	newAdapter AdapterFactory

	mu       sync.Mutex
	sessions map[string]*Context
}

func NewManager(registry *tools.Registry, newAdapter AdapterFactory) *Manager {
	return &Manager{
		registry:   registry,
		newAdapter: newAdapter,
		sessions:   make(map[string]*Context),
	}
}

func (m *Manager) newContext(id string) (*Context, error) {
	api, err := m.newAdapter()
	if err != nil {
		return nil, errors.Wrapf(err, "session %s", id)
	}
	if api == nil {
		return nil, errors.Wrapf(errors.ErrMissingCredentials, "session %s: no API client", id)
	}
	return &Context{ID: id, dispatcher: tools.NewDispatcher(m.registry, api)}, nil
}

// ForSession returns the context for id, creating it on first use.
func (m *Manager) ForSession(id string) (*Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sc, ok := m.sessions[id]; ok {
		return sc, nil
	}
	sc, err := m.newContext(id)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = sc
	log.Debug().Str("session", id).Msg("session context created")
	return sc, nil
}

// Close releases the context for id. Closing an unknown id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		log.Debug().Str("session", id).Msg("session context released")
	}
}

// Len is the number of live session contexts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// AttachHooks releases session contexts when the MCP server unregisters a
// session.
func (m *Manager) AttachHooks(hooks *server.Hooks) {
	hooks.AddOnUnregisterSession(func(_ context.Context, s server.ClientSession) {
		m.Close(s.SessionID())
	})
}

// Register adds every tool in the registry to s.
func (m *Manager) Register(s *server.MCPServer) {
	for _, def := range m.registry.Definitions() {
		s.AddTool(def.Tool, m.HandleTool)
	}
}

// HandleTool is the MCP tool handler. Tool failures are returned as isError
// results; a call without a session or a session that cannot be constructed
// is a protocol error.
func (m *Manager) HandleTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cs := server.ClientSessionFromContext(ctx)
	if cs == nil {
		return nil, errors.Wrapf(errors.ErrNoSession, "tool %s", req.Params.Name)
	}
	sc, err := m.ForSession(cs.SessionID())
	if err != nil {
		log.Err(err).Str("tool", req.Params.Name).Msg("unable to construct session context")
		return nil, err
	}

	logger := log.With().Str("tool", req.Params.Name).Str("session", sc.ID).Logger()
	if grant := auth.GrantFromContext(ctx); grant != nil {
		logger = logger.With().Str("user", grant.UserID).Str("client", grant.ClientID).Logger()
	}

	result := sc.Dispatch(ctx, req.Params.Name, req.Params.Arguments)
	if result.IsError() {
		logger.Info().Str("error", result.Err.Message).Msg("tool call failed")
	} else {
		logger.Info().Msg("tool call succeeded")
	}
	return result.CallToolResult(), nil
}
