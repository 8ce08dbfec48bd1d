// Package server implements the HTTP surface of Librarium: the MCP
// streamable-HTTP transport, the token exchange endpoint, and health.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/librarium-ai/librarium/internal/auth"
	"github.com/librarium-ai/librarium/internal/docindex"
	"github.com/librarium-ai/librarium/internal/ratelimit"
	"github.com/librarium-ai/librarium/internal/session"
	"github.com/librarium-ai/librarium/internal/storage"
)

// Server is the Librarium HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Config holds all dependencies and settings for creating a Server.
type Config struct {
	DB          *storage.DB
	JWTMgr      *auth.JWTManager
	Index       *docindex.Provider
	Registry    *session.Registry
	MCP         *mcpserver.MCPServer
	AuthLimiter ratelimit.Limiter
	Logger      *slog.Logger

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg Config) *Server {
	h := NewHandlers(cfg)

	mux := http.NewServeMux()

	// Token exchange (no auth required). Throttled by client IP so a leaked
	// agent name cannot be brute-forced against the key hash at line rate.
	authLimiter := cfg.AuthLimiter
	if authLimiter == nil {
		authLimiter = ratelimit.Disabled{}
	}
	mux.Handle("POST /auth/token",
		rateLimitMiddleware(authLimiter, cfg.Logger, http.HandlerFunc(h.HandleAuthToken)))

	// Health (no auth required).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// MCP streamable-HTTP transport. Authentication is optional here: the
	// policy engine decides what the anonymous identity may read.
	mcpHTTP := mcpserver.NewStreamableHTTPServer(cfg.MCP)
	mux.Handle("/mcp", sessionMiddleware(cfg.Registry, cfg.Logger, mcpHTTP))

	// Middleware chain (outermost executes first):
	// request ID → tracing → logging → auth → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
