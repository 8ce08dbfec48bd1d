package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// AgentType classifies a registered requester.
type AgentType string

const (
	AgentTypeAgent   AgentType = "agent"
	AgentTypeHuman   AgentType = "human"
	AgentTypeService AgentType = "service"
)

// Agent is a registered requester identity in the backing store.
type Agent struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Type       AgentType      `json:"type"`
	APIKeyHash *string        `json:"-"`
	Tags       []string       `json:"tags"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MaxAgentNameLen bounds the agent name column.
const MaxAgentNameLen = 200

var agentNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateAgentName checks that a name is non-empty, within limits, and uses
// the allowed character set.
func ValidateAgentName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > MaxAgentNameLen {
		return fmt.Errorf("name exceeds maximum length of %d characters", MaxAgentNameLen)
	}
	if !agentNameRe.MatchString(name) {
		return fmt.Errorf("name must start with an alphanumeric character and contain only alphanumerics, dots, underscores, or hyphens")
	}
	return nil
}

// ValidAgentType reports whether t is a known agent type.
func ValidAgentType(t AgentType) bool {
	switch t {
	case AgentTypeAgent, AgentTypeHuman, AgentTypeService:
		return true
	}
	return false
}
