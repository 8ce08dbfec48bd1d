package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/librarium-ai/librarium/internal/auth"
	"github.com/librarium-ai/librarium/internal/docindex"
	"github.com/librarium-ai/librarium/internal/model"
	"github.com/librarium-ai/librarium/internal/session"
	"github.com/librarium-ai/librarium/internal/storage"
)

// Handlers holds dependencies for the HTTP endpoints.
type Handlers struct {
	db                  *storage.DB
	jwtMgr              *auth.JWTManager
	index               *docindex.Provider
	registry            *session.Registry
	logger              *slog.Logger
	version             string
	maxRequestBodyBytes int64
	startedAt           time.Time
}

// NewHandlers creates the endpoint handler set.
func NewHandlers(cfg Config) *Handlers {
	return &Handlers{
		db:                  cfg.DB,
		jwtMgr:              cfg.JWTMgr,
		index:               cfg.Index,
		registry:            cfg.Registry,
		logger:              cfg.Logger,
		version:             cfg.Version,
		maxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		startedAt:           time.Now(),
	}
}

// HandleAuthToken exchanges a registered agent's API key for a JWT.
func (h *Handlers) HandleAuthToken(w http.ResponseWriter, r *http.Request) {
	var req model.AuthTokenRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.Name == "" || req.APIKey == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "name and api_key are required")
		return
	}

	agent, err := h.db.GetAgentByName(r.Context(), req.Name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.Error("auth token lookup failed", "name", req.Name, "error", err)
		}
		// Burn the hash cost anyway so a missing agent is indistinguishable
		// from a wrong key by timing.
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}
	if agent.APIKeyHash == nil {
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	valid, err := auth.VerifyAPIKey(req.APIKey, *agent.APIKeyHash)
	if err != nil || !valid {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := h.jwtMgr.IssueToken(agent)
	if err != nil {
		h.logger.Error("token issuance failed", "name", req.Name, "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to issue token")
		return
	}

	writeJSON(w, r, http.StatusOK, model.AuthTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// HandleHealth reports liveness of the server and its dependencies.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	pgStatus := "connected"
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		pgStatus = "disconnected"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	idx := h.index.Index()
	writeJSON(w, r, httpStatus, model.HealthResponse{
		Status:    status,
		Version:   h.version,
		Postgres:  pgStatus,
		Documents: idx.Len(),
		Corpora:   len(idx.Corpora()),
		Sessions:  h.registry.Len(),
		Uptime:    int64(time.Since(h.startedAt).Seconds()),
	})
}
