// Package ctxutil provides shared context key accessors.
//
// This package exists to break the circular dependency between server and mcp:
// server imports mcp for MCP server setup, and mcp needs to read the requester
// identity and session id that server's middleware populates. Both packages
// import ctxutil instead of each other.
package ctxutil

import (
	"context"

	"github.com/librarium-ai/librarium/internal/auth"
)

type contextKey string

const (
	keyClaims    contextKey = "claims"
	keySessionID contextKey = "session_id"
)

// WithClaims returns a new context carrying the given claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext extracts the JWT claims from the context, or nil if the
// call is unauthenticated.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if v, ok := ctx.Value(keyClaims).(*auth.Claims); ok {
		return v
	}
	return nil
}

// Requester resolves the requester identity for policy and audit purposes.
// Unauthenticated calls degrade to the anonymous identity; the policy engine,
// not the transport, decides what anonymous may read.
func Requester(ctx context.Context) (requesterType, requesterID string) {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.RequesterType, claims.RequesterID
	}
	return "anonymous", ""
}

// WithSessionID returns a new context carrying the MCP session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keySessionID, id)
}

// SessionIDFromContext extracts the MCP session id, or "" if none is bound.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(keySessionID).(string); ok {
		return v
	}
	return ""
}
