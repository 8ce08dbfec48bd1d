package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/librarium-ai/librarium/internal/model"
)

// GetCorpusPolicy returns the stored policy for a corpus, or ErrNotFound when
// no row exists. Callers decide how absence degrades; this method does not
// apply defaults.
func (db *DB) GetCorpusPolicy(ctx context.Context, corpus string) (model.CorpusPolicy, error) {
	var (
		p    model.CorpusPolicy
		mode string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT corpus, min_trust, mode FROM corpus_policies WHERE corpus = $1`,
		corpus,
	).Scan(&p.Corpus, &p.MinTrust, &mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CorpusPolicy{}, ErrNotFound
	}
	if err != nil {
		return model.CorpusPolicy{}, fmt.Errorf("storage: get corpus policy: %w", err)
	}
	p.Mode = model.CorpusMode(mode)
	return p, nil
}

// GetRequesterTrust returns the stored trust record for a (type, id) pair, or
// ErrNotFound when no row exists.
func (db *DB) GetRequesterTrust(ctx context.Context, requesterType, requesterID string) (model.RequesterTrust, error) {
	var (
		t      model.RequesterTrust
		status string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT requester_type, requester_id, trust_score, status
		 FROM requester_trust WHERE requester_type = $1 AND requester_id = $2`,
		requesterType, requesterID,
	).Scan(&t.RequesterType, &t.RequesterID, &t.TrustScore, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RequesterTrust{}, ErrNotFound
	}
	if err != nil {
		return model.RequesterTrust{}, fmt.Errorf("storage: get requester trust: %w", err)
	}
	t.Status = model.TrustStatus(status)
	return t, nil
}

// UpsertCorpusPolicy stores or replaces the policy for a corpus. Used by
// operational tooling and tests; the serving path only reads.
func (db *DB) UpsertCorpusPolicy(ctx context.Context, p model.CorpusPolicy) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO corpus_policies (corpus, min_trust, mode)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (corpus) DO UPDATE SET min_trust = $2, mode = $3`,
		p.Corpus, p.MinTrust, string(p.Mode),
	)
	if err != nil {
		return fmt.Errorf("storage: upsert corpus policy: %w", err)
	}
	return nil
}

// UpsertRequesterTrust stores or replaces a trust record.
func (db *DB) UpsertRequesterTrust(ctx context.Context, t model.RequesterTrust) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO requester_trust (requester_type, requester_id, trust_score, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (requester_type, requester_id) DO UPDATE SET trust_score = $3, status = $4`,
		t.RequesterType, t.RequesterID, t.TrustScore, string(t.Status),
	)
	if err != nil {
		return fmt.Errorf("storage: upsert requester trust: %w", err)
	}
	return nil
}
