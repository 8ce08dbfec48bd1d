package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-ai/librarium/internal/model"
)

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("", "", time.Hour)
	require.NoError(t, err)
	return m
}

func TestIssueAndValidateToken(t *testing.T) {
	m := newTestManager(t)

	agent := model.Agent{ID: uuid.New(), Name: "crawler-7", Type: model.AgentTypeAgent}
	token, exp, err := m.IssueToken(agent)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent", claims.RequesterType)
	assert.Equal(t, "crawler-7", claims.RequesterID)
	assert.Equal(t, agent.ID.String(), claims.Subject)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := newTestManager(t)

	_, err := m.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestValidateTokenRejectsForeignKey(t *testing.T) {
	m1 := newTestManager(t)
	m2 := newTestManager(t)

	token, _, err := m1.IssueToken(model.Agent{ID: uuid.New(), Name: "a", Type: model.AgentTypeAgent})
	require.NoError(t, err)

	_, err = m2.ValidateToken(token)
	assert.Error(t, err, "token signed by a different key must not validate")
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m, err := NewJWTManager("", "", -time.Minute)
	require.NoError(t, err)

	token, _, err := m.IssueToken(model.Agent{ID: uuid.New(), Name: "a", Type: model.AgentTypeAgent})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestAPIKeyRoundTrip(t *testing.T) {
	key, err := NewAPIKey()
	require.NoError(t, err)
	assert.True(t, len(key) > 10)

	hash, err := HashAPIKey(key)
	require.NoError(t, err)
	assert.NotContains(t, hash, key)

	ok, err := VerifyAPIKey(key, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAPIKey(key+"x", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyAPIKeyRejectsMalformedHash(t *testing.T) {
	_, err := VerifyAPIKey("anything", "no-separator")
	assert.Error(t, err)
}
