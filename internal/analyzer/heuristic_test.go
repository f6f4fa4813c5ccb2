package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscope/internal/constants"
)

const seniorResume = `
João da Silva
Desenvolvedor Sênior

Experiência: 8 anos de experiência em desenvolvimento de software.

2015 - 2020: Tech Lead na Empresa X
- Liderou equipe de 6 desenvolvedores
- Implementou arquitetura de microserviços com Docker e Kubernetes
- Desenvolveu APIs REST em Python com Django e FastAPI
- Criou pipelines de CI/CD no GitLab
- Otimizou queries PostgreSQL e Redis
- Mentoria de desenvolvedores júnior e code review

2020 - presente: Arquiteto de Software na Empresa Y
- Projetou migração para AWS
- Coordenou treinamento do time em Terraform

Formação: Bacharelado em Ciência da Computação, Mestrado em Engenharia de Software.
`

const juniorResume = `
Maria Souza
Estagiária de desenvolvimento

Conhecimentos: python, git.
Formação: graduação em andamento.
`

func TestHeuristicScoresSeniorAboveJunior(t *testing.T) {
	h := NewHeuristicAnalyzer()

	job := Request{
		JobTitle:        "Desenvolvedor Backend",
		JobDescription:  "Desenvolvimento de serviços em Python",
		JobRequirements: "python, django, docker, postgresql, aws",
	}

	senior := job
	senior.CandidateName = "João da Silva"
	senior.ResumeText = seniorResume

	junior := job
	junior.CandidateName = "Maria Souza"
	junior.ResumeText = juniorResume

	seniorResult := h.Analyze(senior)
	juniorResult := h.Analyze(junior)

	require.NotNil(t, seniorResult)
	require.NotNil(t, juniorResult)

	assert.Greater(t, seniorResult.Score, juniorResult.Score)
	assert.GreaterOrEqual(t, seniorResult.Score, 7.0)
	assert.Equal(t, constants.ProviderHeuristic, seniorResult.Provider)
	assert.True(t, seniorResult.Degraded)
}

func TestHeuristicDetectsTechnologies(t *testing.T) {
	h := NewHeuristicAnalyzer()

	skills := h.extractTechnologies("experiência com python, django, postgresql e docker")
	assert.ElementsMatch(t, []string{"python", "django", "postgresql", "docker"}, skills)

	// Word boundaries: "javascript" must not also match "java".
	skills = h.extractTechnologies("frontend em javascript e typescript")
	assert.NotContains(t, skills, "java")
	assert.Contains(t, skills, "javascript")
}

func TestHeuristicYearsFromWorkPeriods(t *testing.T) {
	h := NewHeuristicAnalyzer()

	exp := h.analyzeExperience("2015 - 2020: Empresa A\n2020 - 2023: Empresa B")
	assert.InDelta(t, 8.0, exp.years, 0.01)
	assert.False(t, exp.hasExplicitYears)

	exp = h.analyzeExperience("Tenho 6 anos de experiência em backend.")
	assert.InDelta(t, 6.0, exp.years, 0.01)
	assert.True(t, exp.hasExplicitYears)
}

func TestHeuristicSeniorityAdjustedByTenure(t *testing.T) {
	h := NewHeuristicAnalyzer()

	// Junior title but long tenure promotes to senior.
	result := h.detectSeniority("desenvolvedor júnior", 9)
	assert.Equal(t, constants.SenioritySenior, result.level)

	// Senior buzzword with no tenure demotes to junior.
	result = h.detectSeniority("desenvolvedor sênior", 1)
	assert.Equal(t, constants.SeniorityJunior, result.level)

	result = h.detectSeniority("arquiteto de software", 10)
	assert.Equal(t, constants.SeniorityExpert, result.level)
}

func TestTechMatchWithoutJobSkills(t *testing.T) {
	match := calculateTechMatch(
		[]string{"python", "django", "docker", "aws", "git", "redis"},
		nil,
	)
	assert.InDelta(t, 60.0, match.percentage, 0.01)
	assert.InDelta(t, 6.0, match.score, 0.01)
}

func TestTechMatchNoOverlap(t *testing.T) {
	match := calculateTechMatch([]string{"php", "laravel"}, []string{"python", "django"})
	assert.Zero(t, match.percentage)
	assert.InDelta(t, 2.0, match.score, 0.01)
	assert.Len(t, match.missing, 2)
}

func TestHeuristicMinimumScoreFloor(t *testing.T) {
	h := NewHeuristicAnalyzer()

	result := h.Analyze(Request{
		CandidateName: "Vazio",
		ResumeText:    "curto",
	})
	assert.GreaterOrEqual(t, result.Score, 2.0)
	assert.LessOrEqual(t, result.Score, 10.0)
}
