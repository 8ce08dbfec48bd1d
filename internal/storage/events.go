package storage

import (
	"context"
	"fmt"

	"github.com/librarium-ai/librarium/internal/model"
)

// InsertAccessEvent appends one access event. The target table is append-only;
// nothing in the gateway updates or deletes rows from it.
func (db *DB) InsertAccessEvent(ctx context.Context, e model.AccessEvent) error {
	docIDs := e.DocIDs
	if docIDs == nil {
		docIDs = []string{}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO access_events (
		     requester_type, requester_id, session_id, corpus, doc_ids,
		     query, format, ok, error, source, created_at
		 )
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.RequesterType, e.RequesterID, e.SessionID, e.Corpus, docIDs,
		e.Query, e.Format, e.OK, e.Error, e.Source, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("storage: insert access event: %w", err)
	}
	return nil
}

// AccessEventFilter narrows CountAccessEvents. Zero values match everything.
type AccessEventFilter struct {
	Corpus string
	OK     *bool
	Source string
}

// CountAccessEvents returns the number of access events matching the filter.
func (db *DB) CountAccessEvents(ctx context.Context, f AccessEventFilter) (int64, error) {
	query := `SELECT count(*) FROM access_events WHERE 1=1`
	args := []any{}

	if f.Corpus != "" {
		args = append(args, f.Corpus)
		query += fmt.Sprintf(" AND corpus = $%d", len(args))
	}
	if f.OK != nil {
		args = append(args, *f.OK)
		query += fmt.Sprintf(" AND ok = $%d", len(args))
	}
	if f.Source != "" {
		args = append(args, f.Source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}

	var count int64
	if err := db.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("storage: count access events: %w", err)
	}
	return count, nil
}
