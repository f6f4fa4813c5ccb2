package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "talentscope", cfg.MySQL.Database)
	assert.Equal(t, 720, cfg.Redis.SessionTTLMinutes)
	assert.Equal(t, "resumes", cfg.MinIO.ResumesBucket)
	assert.Equal(t, "parsed-text", cfg.MinIO.ParsedTextBucket)
	assert.Equal(t, "q.resume_ingest", cfg.RabbitMQ.ResumeIngestQueue)
	assert.Equal(t, 15000, cfg.Chatbot.PromptCharLimit)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 8000, cfg.Analyzer.ResumeTextLimit)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
mysql:
  database: "talentscope_test"
agent:
  agent_id: "99"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "talentscope_test", cfg.MySQL.Database)
	assert.Equal(t, "99", cfg.Agent.AgentID)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 10, cfg.RabbitMQ.PrefetchCount)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \":8081\"\n"), 0o644))

	t.Setenv("AGENT_API_KEY", "env-key")
	t.Setenv("AGENT_ID", "1234")
	t.Setenv("MYSQL_PASSWORD", "env-secret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Agent.APIKey)
	assert.Equal(t, "1234", cfg.Agent.AgentID)
	assert.Equal(t, "env-secret", cfg.MySQL.Password)
}

func TestAgentExecuteURL(t *testing.T) {
	cfg := AgentConfig{BaseURL: "https://tess.pareto.io/api/", AgentID: "67"}
	assert.Equal(t, "https://tess.pareto.io/api/agents/67/execute", cfg.AgentExecuteURL())
}

func TestAgentConfigured(t *testing.T) {
	cfg := AgentConfig{}
	assert.False(t, cfg.Configured())

	cfg.APIKey = "key"
	assert.False(t, cfg.Configured())

	cfg.AgentID = "67"
	assert.True(t, cfg.Configured())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("bogus", time.Minute))
}
