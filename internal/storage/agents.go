package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/librarium-ai/librarium/internal/model"
)

// CreateAgent inserts a new registered agent and returns it with the
// generated id and creation timestamp filled in.
func (db *DB) CreateAgent(ctx context.Context, agent model.Agent) (model.Agent, error) {
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now().UTC()
	}
	if agent.Tags == nil {
		agent.Tags = []string{}
	}
	if agent.Metadata == nil {
		agent.Metadata = map[string]any{}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO agents (id, name, agent_type, api_key_hash, tags, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		agent.ID, agent.Name, string(agent.Type), agent.APIKeyHash,
		agent.Tags, agent.Metadata, agent.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.Agent{}, fmt.Errorf("agent %q: %w", agent.Name, ErrDuplicate)
	}
	if err != nil {
		return model.Agent{}, fmt.Errorf("storage: create agent: %w", err)
	}
	return agent, nil
}

// GetAgentByName returns the agent registered under the given name.
func (db *DB) GetAgentByName(ctx context.Context, name string) (model.Agent, error) {
	var (
		agent     model.Agent
		agentType string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, agent_type, api_key_hash, tags, metadata, created_at
		 FROM agents WHERE name = $1`,
		name,
	).Scan(&agent.ID, &agent.Name, &agentType, &agent.APIKeyHash,
		&agent.Tags, &agent.Metadata, &agent.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Agent{}, ErrNotFound
	}
	if err != nil {
		return model.Agent{}, fmt.Errorf("storage: get agent by name: %w", err)
	}
	agent.Type = model.AgentType(agentType)
	return agent, nil
}

// CountAgents returns the number of registered agents, optionally filtered by
// agent type.
func (db *DB) CountAgents(ctx context.Context, agentType string) (int64, error) {
	var (
		count int64
		err   error
	)
	if agentType == "" {
		err = db.pool.QueryRow(ctx, `SELECT count(*) FROM agents`).Scan(&count)
	} else {
		err = db.pool.QueryRow(ctx,
			`SELECT count(*) FROM agents WHERE agent_type = $1`, agentType,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("storage: count agents: %w", err)
	}
	return count, nil
}
