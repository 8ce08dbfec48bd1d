package model

import "fmt"

// CorpusMode describes how a corpus is exposed to requesters.
type CorpusMode string

const (
	CorpusModePublic   CorpusMode = "public"
	CorpusModeGated    CorpusMode = "gated"
	CorpusModeInternal CorpusMode = "internal"
)

// CorpusPolicy is the access policy snapshot for a single corpus.
// A corpus with no stored policy behaves as DefaultCorpusPolicy().
type CorpusPolicy struct {
	Corpus   string     `json:"corpus"`
	MinTrust int        `json:"min_trust"`
	Mode     CorpusMode `json:"mode"`
}

// DefaultCorpusPolicy is the fail-open policy used when no row exists or the
// policy store is unreachable.
func DefaultCorpusPolicy(corpus string) CorpusPolicy {
	return CorpusPolicy{Corpus: corpus, MinTrust: 0, Mode: CorpusModePublic}
}

// TrustStatus is the standing of a requester identity.
type TrustStatus string

const (
	TrustStatusActive  TrustStatus = "active"
	TrustStatusBlocked TrustStatus = "blocked"
)

// RequesterTrust is the trust record for a (type, id) requester pair.
type RequesterTrust struct {
	RequesterType string      `json:"requester_type"`
	RequesterID   string      `json:"requester_id"`
	TrustScore    int         `json:"trust_score"`
	Status        TrustStatus `json:"status"`
}

// DefaultRequesterTrust is the record used when no row exists or the trust
// store is unreachable. Unknown requesters are active with zero trust, which
// keeps public corpora readable during a store outage.
func DefaultRequesterTrust(requesterType, requesterID string) RequesterTrust {
	return RequesterTrust{
		RequesterType: requesterType,
		RequesterID:   requesterID,
		TrustScore:    0,
		Status:        TrustStatusActive,
	}
}

// Access decision reason strings. These are machine-readable and stable;
// clients match on them.
const (
	ReasonAllowed          = "allowed"
	ReasonRequesterBlocked = "requester_blocked"
)

// ReasonTrustBelowThreshold formats the denial reason for a trust score below
// the corpus minimum.
func ReasonTrustBelowThreshold(minTrust int) string {
	return fmt.Sprintf("trust_below_threshold:%d", minTrust)
}

// AccessDecision is the pure outcome of a policy evaluation. It carries no
// side effects; auditing is the caller's responsibility.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Allow returns an allowing decision.
func Allow() AccessDecision {
	return AccessDecision{Allowed: true, Reason: ReasonAllowed}
}

// Deny returns a denying decision with the given machine-readable reason.
func Deny(reason string) AccessDecision {
	return AccessDecision{Allowed: false, Reason: reason}
}
