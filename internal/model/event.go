package model

import "time"

// AccessEvent is the append-only audit record for one gated tool invocation.
// Exactly one event is written per gated call, success or failure, with OK
// reflecting the true outcome.
type AccessEvent struct {
	RequesterType string    `json:"requester_type"`
	RequesterID   string    `json:"requester_id"`
	SessionID     string    `json:"session_id"`
	Corpus        *string   `json:"corpus,omitempty"`
	DocIDs        []string  `json:"doc_ids,omitempty"`
	Query         *string   `json:"query,omitempty"`
	Format        *string   `json:"format,omitempty"`
	OK            bool      `json:"ok"`
	Error         *string   `json:"error,omitempty"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}
