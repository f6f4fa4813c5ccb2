package chatbot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleCandidates() []CandidateContext {
	return []CandidateContext{
		{
			ID: "c1", Name: "João Silva", JobTitle: "Backend Developer",
			Seniority: "Senior", Score: 8.5, HardScore: 9.0, SoftScore: 7.0,
			Skills:         []string{"python", "django", "docker", "aws", "postgresql", "redis"},
			Recommendation: "Recommended",
		},
		{
			ID: "c2", Name: "Maria Souza", JobTitle: "Backend Developer",
			Seniority: "Junior", Score: 5.2, HardScore: 5.0, SoftScore: 5.5,
			Skills: []string{"python"},
		},
		{
			ID: "c3", Name: "Pedro Santos", JobTitle: "Data Analyst",
			Seniority: "Mid", Score: 7.1, HardScore: 7.5, SoftScore: 6.5,
			Skills: []string{"sql", "power bi"},
		},
	}
}

func sampleJobs() []JobContext {
	return []JobContext{
		{ID: "j1", Title: "Backend Developer", Department: "Engineering", RequiredSkills: "python, django, docker"},
		{ID: "j2", Title: "Data Analyst", Department: "Data", RequiredSkills: "sql, power bi, excel"},
	}
}

func TestDetectQuestionType(t *testing.T) {
	cases := []struct {
		query string
		want  questionType
	}{
		{"olá, tudo bem?", questionGreeting},
		{"compare João e Maria", questionComparison},
		{"quem é o melhor candidato?", questionRanking},
		{"recomende alguém para a vaga de backend", questionJobMatch},
		{"me dê detalhes sobre o perfil do Pedro", questionIndividual},
		{"quantos candidatos temos no total?", questionStatistics},
		{"o que você acha do processo?", questionGeneral},
		// Long sentences starting with a greeting are not greetings.
		{"olá, preciso de um ranking completo dos candidatos por score", questionRanking},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, detectQuestionType(tc.query), "query: %s", tc.query)
	}
}

func TestCalculateMetrics(t *testing.T) {
	m := calculateMetrics(sampleCandidates())

	assert.InDelta(t, (8.5+5.2+7.1)/3, m.avgOverall, 0.01)
	assert.Equal(t, 1, m.highPerformers)
	assert.Contains(t, m.summary, "Senior: 1")
	assert.Contains(t, m.summary, "Junior: 1")
	assert.Contains(t, m.summary, "Alto Desempenho (>=8): 1 (33%)")
}

func TestCalculateMetricsEmpty(t *testing.T) {
	m := calculateMetrics(nil)
	assert.Equal(t, "Sem candidatos para análise", m.summary)
}

func TestWeightedScore(t *testing.T) {
	assert.InDelta(t, 8.2, WeightedScore(9.0, 7.0), 0.001)
}

func TestBuildChatPromptContent(t *testing.T) {
	prompt := BuildChatPrompt(sampleCandidates(), sampleJobs(), "quem é o melhor candidato?", 0)

	assert.Contains(t, prompt, "CANDIDATOS ANALISADOS (3)")
	assert.Contains(t, prompt, "VAGAS DISPONÍVEIS (2)")
	assert.Contains(t, prompt, "INSTRUÇÃO PARA RANKING")
	assert.Contains(t, prompt, "quem é o melhor candidato?")

	// João matches all three required backend skills.
	assert.Contains(t, prompt, "100% de match com vaga")
	// Maria only has python out of three.
	assert.Contains(t, prompt, "33% de match com vaga")
	// Weighted score for João: 9.0*0.6 + 7.0*0.4.
	assert.Contains(t, prompt, "Score Ponderado: 8.2/10")
	// Best candidate per job is surfaced.
	assert.Contains(t, prompt, "Melhor Candidato: João Silva (Score: 8.5/10)")
	// Only the top five skills are listed.
	assert.NotContains(t, prompt, "redis")
}

func TestBuildChatPromptCharLimit(t *testing.T) {
	prompt := BuildChatPrompt(sampleCandidates(), sampleJobs(), "resumo", 500)
	assert.LessOrEqual(t, len([]rune(prompt)), 500)
}

func TestCleanReply(t *testing.T) {
	raw := `Análise dos candidatos:

João Silva lidera com score 8.5.

Na TalentScope nós encontramos os melhores talentos!
Entre em contato para saber mais.
#recrutamento #talentos

Recomendo avançar com João.`

	cleaned := CleanReply(raw)
	assert.Contains(t, cleaned, "João Silva lidera com score 8.5.")
	assert.Contains(t, cleaned, "Recomendo avançar com João.")
	assert.NotContains(t, cleaned, "TalentScope")
	assert.NotContains(t, cleaned, "Entre em contato")
	assert.NotContains(t, cleaned, "#recrutamento")
	assert.NotContains(t, cleaned, "\n\n\n")
}

func TestLocalSummaryAnswer(t *testing.T) {
	answer := localSummaryAnswer(sampleCandidates(), sampleJobs())
	assert.Contains(t, answer, "Candidatos: 3 | Vagas: 2")
	assert.Contains(t, answer, "Score Médio Geral: 6.9/10")

	empty := localSummaryAnswer(nil, nil)
	assert.Contains(t, empty, "ainda não há candidatos")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "N/A", truncate("", 10))
	assert.Equal(t, "curto", truncate("curto", 10))
	assert.Equal(t, strings.Repeat("a", 5)+"...", truncate(strings.Repeat("a", 9), 5))
}
