package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscope/internal/config"
	"talentscope/internal/constants"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Agent.BaseURL = baseURL
	cfg.Agent.APIKey = "test-key"
	cfg.Agent.AgentID = "67"
	return cfg
}

func TestAnalyzeUsesRemoteAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agents/67/execute", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload["texto"], "ANÁLISE DE CURRÍCULO")
		assert.Equal(t, true, payload["wait_execution"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"responses": []map[string]interface{}{
				{"output": `{"score": 9.0, "hard_skills": [{"nome": "Go"}], "experiencia": {"anos": 6}}`},
			},
		})
	}))
	defer server.Close()

	a := New(testConfig(server.URL))
	result := a.Analyze(context.Background(), Request{
		CandidateName: "João",
		ResumeText:    "Desenvolvedor Go com 6 anos de experiência.",
	})

	require.NotNil(t, result)
	assert.Equal(t, constants.ProviderAgent, result.Provider)
	assert.InDelta(t, 9.0, result.Score, 0.01)
	assert.Equal(t, []string{"Go"}, result.MainSkills)
	assert.False(t, result.Degraded)
}

func TestAnalyzeFallsBackToHeuristicOnAgentError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	a := New(testConfig(server.URL))
	result := a.Analyze(context.Background(), Request{
		CandidateName:   "Maria",
		ResumeText:      "Desenvolvedora python com 5 anos de experiência. Implementou APIs com django e postgresql.",
		JobRequirements: "python, django",
	})

	require.NotNil(t, result)
	assert.Equal(t, constants.ProviderHeuristic, result.Provider)
	assert.True(t, result.Degraded)
	assert.Greater(t, result.Score, 2.0)
}

func TestAnalyzeWithoutAgentCredentials(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Agent.APIKey = ""
	cfg.Agent.AgentID = ""

	a := New(cfg)
	result := a.Analyze(context.Background(), Request{
		CandidateName: "Pedro",
		ResumeText:    "Analista de sistemas, 3 anos de experiência com java e spring.",
	})

	require.NotNil(t, result)
	assert.Equal(t, constants.ProviderHeuristic, result.Provider)
}

func TestEmergencyAnalysis(t *testing.T) {
	result := emergencyAnalysis(Request{CandidateName: "Ana"})

	assert.Equal(t, constants.ProviderEmergency, result.Provider)
	assert.Equal(t, constants.RecommendationReview, result.Recommendation)
	assert.Equal(t, constants.SeniorityUnknown, result.Seniority)
	assert.Zero(t, result.Score)
	assert.True(t, result.Degraded)
}
