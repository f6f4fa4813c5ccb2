package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscope/internal/constants"
)

func TestParseAgentOutputJSON(t *testing.T) {
	output := `Segue a análise solicitada:
{
  "score": 8.7,
  "hard_skills": [
    {"nome": "Python", "nivel": "Avançado"},
    {"nome": "Docker", "nivel": "Intermediário"}
  ],
  "soft_skills": ["Liderança", "Comunicação"],
  "experiencia": {
    "anos": 8,
    "cargos": ["Tech Lead", "Desenvolvedor Sênior"]
  },
  "pontos_fortes": ["Sólida experiência em backend"],
  "pontos_atencao": ["Pouca exposição a cloud"],
  "observacoes_riscos": ["Nenhum risco crítico identificado"]
}`

	result := ParseAgentOutput(output, Request{CandidateName: "João"})
	require.NotNil(t, result)

	assert.InDelta(t, 8.7, result.Score, 0.01)
	assert.Equal(t, []string{"Python", "Docker"}, result.MainSkills)
	assert.Equal(t, []string{"Liderança", "Comunicação"}, result.SoftSkills)
	assert.InDelta(t, 8.0, result.YearsExperience, 0.01)
	assert.Equal(t, []string{"Tech Lead", "Desenvolvedor Sênior"}, result.Positions)
	assert.Equal(t, constants.SenioritySenior, result.Seniority)
	assert.Equal(t, constants.RecommendationHigh, result.Recommendation)
	assert.Equal(t, "Sólida experiência em backend", result.RecommendationReason)
	assert.Equal(t, constants.ProviderAgent, result.Provider)
	assert.False(t, result.Degraded)
}

func TestParseAgentOutputAlternateKeys(t *testing.T) {
	output := `{
  "pontuacao": "7,5",
  "hard_skills": ["Java", {"name": "Spring"}, {"skill": "Kafka"}],
  "experiencia": {"years": 5, "positions": ["Developer"]}
}`

	result := ParseAgentOutput(output, Request{})
	assert.InDelta(t, 7.5, result.Score, 0.01)
	assert.Equal(t, []string{"Java", "Spring", "Kafka"}, result.MainSkills)
	assert.InDelta(t, 5.0, result.YearsExperience, 0.01)
	assert.Equal(t, []string{"Developer"}, result.Positions)
	assert.Equal(t, constants.SeniorityMid, result.Seniority)
}

func TestParseAgentOutputFreeText(t *testing.T) {
	output := `O candidato tem um perfil interessante.
Nota: 7,2 pelo conjunto da obra.
Possui 4 anos de experiência com backend.

Skills identificadas:
- Python
- PostgreSQL
- Docker
`

	result := ParseAgentOutput(output, Request{CandidateName: "Maria"})
	assert.InDelta(t, 7.2, result.Score, 0.01)
	assert.InDelta(t, 4.0, result.YearsExperience, 0.01)
	assert.Equal(t, []string{"Python", "PostgreSQL", "Docker"}, result.MainSkills)
	assert.Equal(t, constants.RecommendationYes, result.Recommendation)
	assert.Equal(t, []string{"Verificar manualmente"}, result.Positions)
}

func TestParseAgentOutputNoSignal(t *testing.T) {
	result := ParseAgentOutput("resposta vazia do agente", Request{})

	// No score found anywhere: the chain settles on the neutral default.
	assert.InDelta(t, defaultAgentScore, result.Score, 0.01)
	assert.InDelta(t, 2.0, result.YearsExperience, 0.01)
	assert.Equal(t, constants.RecommendationYes, result.Recommendation)
}

func TestRecommendationThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{9.1, constants.RecommendationHigh},
		{8.0, constants.RecommendationHigh},
		{7.9, constants.RecommendationYes},
		{6.5, constants.RecommendationYes},
		{6.4, constants.RecommendationReview},
		{5.0, constants.RecommendationReview},
		{4.9, constants.RecommendationNo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, recommendationForAgentScore(tc.score), "score %.1f", tc.score)
	}
}

func TestSeniorityFromYearsAndScore(t *testing.T) {
	assert.Equal(t, constants.SenioritySenior, seniorityFromYearsAndScore(7, 5))
	assert.Equal(t, constants.SenioritySenior, seniorityFromYearsAndScore(1, 9))
	assert.Equal(t, constants.SeniorityMid, seniorityFromYearsAndScore(4, 5))
	assert.Equal(t, constants.SeniorityJunior, seniorityFromYearsAndScore(2, 4))
	assert.Equal(t, constants.SeniorityTrainee, seniorityFromYearsAndScore(0, 3))
}
