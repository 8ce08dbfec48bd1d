// Package mcp implements the Model Context Protocol server for Librarium.
//
// Every capability of the gateway is exposed as an MCP tool: registration and
// stats against the backing store, and the gated corpus reads (list, get,
// search, ask). The handlers here are the dispatch layer described in the
// design: validate arguments, evaluate the access policy for gated reads,
// perform the operation, and record exactly one audit event per gated call.
package mcp

import (
	"context"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/librarium-ai/librarium/internal/audit"
	"github.com/librarium-ai/librarium/internal/ctxutil"
	"github.com/librarium-ai/librarium/internal/docindex"
	"github.com/librarium-ai/librarium/internal/model"
	"github.com/librarium-ai/librarium/internal/policy"
	"github.com/librarium-ai/librarium/internal/session"
	"github.com/librarium-ai/librarium/internal/storage"
)

// Store is the slice of the storage layer the tool handlers write and count
// against.
type Store interface {
	CreateAgent(ctx context.Context, agent model.Agent) (model.Agent, error)
	CountAgents(ctx context.Context, agentType string) (int64, error)
	CountAccessEvents(ctx context.Context, f storage.AccessEventFilter) (int64, error)
}

// Server wraps the MCP server with Librarium's service layer.
type Server struct {
	mcpServer *mcpserver.MCPServer
	store     Store
	engine    *policy.Engine
	index     *docindex.Provider
	recorder  *audit.Recorder
	registry  *session.Registry
	logger    *slog.Logger
}

// New creates and configures a new MCP server with all tools registered and
// the session registry bound to transport session lifecycle.
func New(
	store Store,
	engine *policy.Engine,
	index *docindex.Provider,
	recorder *audit.Recorder,
	registry *session.Registry,
	logger *slog.Logger,
	version string,
) *Server {
	s := &Server{
		store:    store,
		engine:   engine,
		index:    index,
		recorder: recorder,
		registry: registry,
		logger:   logger,
	}

	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(_ context.Context, cs mcpserver.ClientSession) {
		registry.Create(cs.SessionID())
	})
	hooks.AddOnUnregisterSession(func(_ context.Context, cs mcpserver.ClientSession) {
		registry.Dispose(cs.SessionID())
	})

	s.mcpServer = mcpserver.NewMCPServer(
		"librarium",
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// sessionID resolves the session identifier for audit records. Inside a live
// transport the mcp-go client session carries it; middleware-injected ids
// cover everything else.
func sessionID(ctx context.Context) string {
	if cs := mcpserver.ClientSessionFromContext(ctx); cs != nil {
		return cs.SessionID()
	}
	return ctxutil.SessionIDFromContext(ctx)
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}
