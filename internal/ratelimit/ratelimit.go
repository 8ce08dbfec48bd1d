// Package ratelimit throttles the credential exchange endpoint.
//
// The default implementation is a per-key in-memory token bucket
// (MemoryBucket). Deployments that need cross-instance coordination can
// substitute their own Limiter.
package ratelimit

import "context"

// Limiter decides whether the request identified by key may proceed.
// Implementations must be safe for concurrent use. An error means the
// limiter itself failed; callers treat that as fail-open so a broken
// limiter never takes down the endpoint it protects.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)

	// Close releases any background resources.
	Close() error
}

// Disabled permits everything. Used when throttling is turned off.
type Disabled struct{}

func (Disabled) Allow(context.Context, string) (bool, error) { return true, nil }

func (Disabled) Close() error { return nil }
