package mcp

import (
	"context"
	"fmt"

	"github.com/librarium-ai/librarium/internal/auth"
	"github.com/librarium-ai/librarium/internal/model"
)

// registerAgent creates the agent record with a freshly minted API key. The
// plaintext key is returned once and only the argon2 hash is persisted.
func registerAgent(ctx context.Context, store Store, name string, agentType model.AgentType, tags []string) (model.Agent, string, error) {
	apiKey, err := auth.NewAPIKey()
	if err != nil {
		return model.Agent{}, "", fmt.Errorf("generating api key: %w", err)
	}
	hash, err := auth.HashAPIKey(apiKey)
	if err != nil {
		return model.Agent{}, "", fmt.Errorf("hashing api key: %w", err)
	}

	agent := model.Agent{
		Name:       name,
		Type:       agentType,
		APIKeyHash: &hash,
		Tags:       tags,
	}
	created, err := store.CreateAgent(ctx, agent)
	if err != nil {
		return model.Agent{}, "", err
	}
	return created, apiKey, nil
}
