// Package policy implements the trust-based access control engine that gates
// corpus reads.
//
// The engine compares a requester's trust score against the minimum trust of
// the corpus being read. Lookup failures degrade asymmetrically: a missing or
// unreadable policy row fails open (a policy-store outage must not disable
// retrieval entirely), while an explicit blocked status fails closed and is
// checked before any threshold comparison, so a stale or defaulted trust score
// can never bypass a block.
package policy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/librarium-ai/librarium/internal/model"
	"github.com/librarium-ai/librarium/internal/storage"
)

// Store is the subset of the storage layer the engine reads.
// Both lookups return storage.ErrNotFound for absent rows.
type Store interface {
	GetCorpusPolicy(ctx context.Context, corpus string) (model.CorpusPolicy, error)
	GetRequesterTrust(ctx context.Context, requesterType, requesterID string) (model.RequesterTrust, error)
}

// Engine evaluates (requester, corpus) access decisions.
// Decisions are pure values; the caller is responsible for auditing them.
type Engine struct {
	store       Store
	policyCache *ttlCache[model.CorpusPolicy]
	trustCache  *ttlCache[model.RequesterTrust]
	logger      *slog.Logger
}

// New creates an Engine backed by the given store. cacheTTL bounds how long
// policy and trust snapshots are served without a fresh lookup; zero disables
// caching.
func New(store Store, cacheTTL time.Duration, logger *slog.Logger) *Engine {
	e := &Engine{store: store, logger: logger}
	if cacheTTL > 0 {
		e.policyCache = newTTLCache[model.CorpusPolicy](cacheTTL)
		e.trustCache = newTTLCache[model.RequesterTrust](cacheTTL)
	}
	return e
}

// Close stops the cache eviction goroutines.
func (e *Engine) Close() {
	if e.policyCache != nil {
		e.policyCache.Close()
	}
	if e.trustCache != nil {
		e.trustCache.Close()
	}
}

// Enforce decides whether the requester may read the given corpus.
//
// Evaluation order is fixed: blocked status first, trust threshold second.
func (e *Engine) Enforce(ctx context.Context, requesterType, requesterID, corpus string) model.AccessDecision {
	pol := e.corpusPolicy(ctx, corpus)
	trust := e.requesterTrust(ctx, requesterType, requesterID)

	if trust.Status == model.TrustStatusBlocked {
		return model.Deny(model.ReasonRequesterBlocked)
	}
	if trust.TrustScore < pol.MinTrust {
		return model.Deny(model.ReasonTrustBelowThreshold(pol.MinTrust))
	}
	return model.Allow()
}

func (e *Engine) corpusPolicy(ctx context.Context, corpus string) model.CorpusPolicy {
	if e.policyCache != nil {
		if pol, ok := e.policyCache.Get(corpus); ok {
			return pol
		}
	}

	pol, err := e.store.GetCorpusPolicy(ctx, corpus)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		pol = model.DefaultCorpusPolicy(corpus)
	default:
		e.logger.Warn("policy: corpus policy lookup failed, defaulting to public",
			"corpus", corpus, "error", err)
		// Do not cache outage defaults; retry the store on the next call.
		return model.DefaultCorpusPolicy(corpus)
	}

	if e.policyCache != nil {
		e.policyCache.Set(corpus, pol)
	}
	return pol
}

func (e *Engine) requesterTrust(ctx context.Context, requesterType, requesterID string) model.RequesterTrust {
	key := requesterType + "\x00" + requesterID
	if e.trustCache != nil {
		if trust, ok := e.trustCache.Get(key); ok {
			return trust
		}
	}

	trust, err := e.store.GetRequesterTrust(ctx, requesterType, requesterID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		trust = model.DefaultRequesterTrust(requesterType, requesterID)
	default:
		e.logger.Warn("policy: requester trust lookup failed, defaulting to zero trust",
			"requester_type", requesterType, "requester_id", requesterID, "error", err)
		return model.DefaultRequesterTrust(requesterType, requesterID)
	}

	if e.trustCache != nil {
		e.trustCache.Set(key, trust)
	}
	return trust
}
