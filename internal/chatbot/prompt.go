package chatbot

import (
	"fmt"
	"strings"
)

// CandidateContext is the slice of a candidate record the chatbot
// reasons over.
type CandidateContext struct {
	ID             string
	Name           string
	JobTitle       string
	Seniority      string
	Score          float64
	HardScore      float64
	SoftScore      float64
	Skills         []string
	Recommendation string
	Strengths      string
	Weaknesses     string
}

// JobContext is the slice of a job record the chatbot reasons over.
type JobContext struct {
	ID             string
	Title          string
	Department     string
	RequiredSkills string
	Description    string
}

type questionType string

const (
	questionGreeting   questionType = "greeting"
	questionComparison questionType = "comparison"
	questionRanking    questionType = "ranking"
	questionJobMatch   questionType = "job_match"
	questionIndividual questionType = "individual_analysis"
	questionStatistics questionType = "statistics"
	questionGeneral    questionType = "general"
)

// detectQuestionType classifies the user question so the prompt can
// carry instructions tuned to it. Keywords are Portuguese-first since
// that is the recruiters' working language.
func detectQuestionType(query string) questionType {
	q := strings.ToLower(query)

	if containsAnyWord(q, "olá", "oi", "bom dia", "boa tarde", "hey") && len(strings.Fields(q)) < 5 {
		return questionGreeting
	}
	if containsAnyWord(q, "compare", "comparar", "vs", "versus", "diferença") {
		return questionComparison
	}
	if containsAnyWord(q, "melhor", "top", "ranking", "melhores", "classificar") {
		return questionRanking
	}
	if containsAnyWord(q, "adequado", "recomende", "sugira", "para a vaga", "qual vaga") {
		return questionJobMatch
	}
	if containsAnyWord(q, "sobre", "perfil", "detalhes", "informações sobre") {
		return questionIndividual
	}
	if containsAnyWord(q, "quantos", "quantas", "estatística", "média", "total") {
		return questionStatistics
	}
	return questionGeneral
}

type metrics struct {
	summary        string
	avgOverall     float64
	avgHard        float64
	avgSoft        float64
	highPerformers int
}

// calculateMetrics pre-computes the aggregate numbers so the agent
// answers from real figures instead of inventing them.
func calculateMetrics(candidates []CandidateContext) metrics {
	if len(candidates) == 0 {
		return metrics{summary: "Sem candidatos para análise"}
	}

	var sumOverall, sumHard, sumSoft float64
	var high, mid, low int
	seniorityDist := make(map[string]int)
	var seniorityOrder []string

	for _, c := range candidates {
		sumOverall += c.Score
		sumHard += c.HardScore
		sumSoft += c.SoftScore
		switch {
		case c.Score >= 8:
			high++
		case c.Score >= 6:
			mid++
		default:
			low++
		}
		sen := c.Seniority
		if sen == "" {
			sen = "Não detectado"
		}
		if _, seen := seniorityDist[sen]; !seen {
			seniorityOrder = append(seniorityOrder, sen)
		}
		seniorityDist[sen]++
	}

	n := float64(len(candidates))
	parts := make([]string, 0, len(seniorityOrder))
	for _, sen := range seniorityOrder {
		parts = append(parts, fmt.Sprintf("%s: %d", sen, seniorityDist[sen]))
	}

	summary := fmt.Sprintf(`
- Score Médio Geral: %.1f/10
- Score Médio Hard Skills: %.1f/10
- Score Médio Soft Skills: %.1f/10
- Candidatos de Alto Desempenho (>=8): %d (%.0f%%)
- Candidatos de Médio Desempenho (6-8): %d (%.0f%%)
- Candidatos Abaixo da Média (<6): %d (%.0f%%)
- Distribuição de Senioridade: %s`,
		sumOverall/n, sumHard/n, sumSoft/n,
		high, float64(high)/n*100,
		mid, float64(mid)/n*100,
		low, float64(low)/n*100,
		strings.Join(parts, ", "))

	return metrics{
		summary:        summary,
		avgOverall:     sumOverall / n,
		avgHard:        sumHard / n,
		avgSoft:        sumSoft / n,
		highPerformers: high,
	}
}

// WeightedScore combines hard and soft skill scores the way the hiring
// guideline weighs them: 60% technical, 40% interpersonal.
func WeightedScore(hard, soft float64) float64 {
	return hard*0.6 + soft*0.4
}

func formatCandidates(candidates []CandidateContext, jobs []JobContext) string {
	jobsByTitle := make(map[string]JobContext, len(jobs))
	for _, j := range jobs {
		jobsByTitle[j.Title] = j
	}

	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		skills := "Não informado"
		if len(c.Skills) > 0 {
			limit := len(c.Skills)
			if limit > 5 {
				limit = 5
			}
			skills = strings.Join(c.Skills[:limit], ", ")
		}

		gapAnalysis := "N/A"
		if job, ok := jobsByTitle[c.JobTitle]; ok && job.RequiredSkills != "" {
			required := strings.Split(strings.ToLower(job.RequiredSkills), ",")
			candidateSkills := strings.ToLower(strings.Join(c.Skills, ", "))
			matched := 0
			for _, rs := range required {
				if rs = strings.TrimSpace(rs); rs != "" && strings.Contains(candidateSkills, rs) {
					matched++
				}
			}
			if len(required) > 0 {
				gapAnalysis = fmt.Sprintf("%.0f%% de match com vaga", float64(matched)/float64(len(required))*100)
			}
		}

		blocks = append(blocks, fmt.Sprintf(`**%s** (ID: %s)
- Vaga Aplicada: %s
- Senioridade: %s
- Score Geral: %.1f/10 | Score Ponderado: %.1f/10
- Hard Skills: %.1f/10 | Soft Skills: %.1f/10
- Principais Competências: %s
- Match com Vaga: %s
- Recomendação: %s
- Pontos Fortes: %s
- Pontos de Atenção: %s`,
			c.Name, c.ID, c.JobTitle, c.Seniority,
			c.Score, WeightedScore(c.HardScore, c.SoftScore),
			c.HardScore, c.SoftScore,
			skills, gapAnalysis, c.Recommendation,
			truncate(c.Strengths, 100), truncate(c.Weaknesses, 100)))
	}
	return strings.Join(blocks, "\n\n")
}

func formatJobs(jobs []JobContext, candidates []CandidateContext) string {
	blocks := make([]string, 0, len(jobs))
	for _, j := range jobs {
		var forJob []CandidateContext
		for _, c := range candidates {
			if c.JobTitle == j.Title {
				forJob = append(forJob, c)
			}
		}

		avgScore := 0.0
		topName := "Nenhum"
		topScore := 0.0
		if len(forJob) > 0 {
			var sum float64
			for _, c := range forJob {
				sum += c.Score
				if c.Score > topScore {
					topScore = c.Score
					topName = c.Name
				}
			}
			avgScore = sum / float64(len(forJob))
		}

		blocks = append(blocks, fmt.Sprintf(`**%s** (ID: %s)
- Departamento: %s
- Candidatos Inscritos: %d
- Score Médio dos Candidatos: %.1f/10
- Melhor Candidato: %s (Score: %.1f/10)
- Skills Requeridas: %s
- Descrição: %s`,
			j.Title, j.ID, j.Department, len(forJob), avgScore,
			topName, topScore,
			truncate(j.RequiredSkills, 150), truncate(j.Description, 150)))
	}
	return strings.Join(blocks, "\n\n")
}

func instructionsFor(qt questionType) string {
	switch qt {
	case questionGreeting:
		return `
## INSTRUÇÃO PARA SAUDAÇÃO:
Responda de forma profissional e objetiva, apresentando:
1. Resumo executivo das métricas gerais (use os dados calculados)
2. Destaques: top 3 candidatos por score
3. Status das vagas (qual tem mais/menos candidatos)
4. Sugestões de 3 perguntas úteis que o usuário pode fazer

NÃO faça propaganda. Seja objetivo e analítico.`
	case questionComparison:
		return `
## INSTRUÇÃO PARA COMPARAÇÃO:
OBRIGATÓRIO criar uma tabela comparativa com:
- Scores lado a lado (geral, hard, soft)
- Skills em comum e exclusivas
- Análise de gaps específicos
- Recomendação fundamentada com percentuais
- Vencedor da comparação com justificativa quantitativa`
	case questionRanking:
		return `
## INSTRUÇÃO PARA RANKING:
OBRIGATÓRIO criar ranking ordenado com:
1. Posição (1º, 2º, 3º...)
2. Nome, score geral e score ponderado
3. Justificativa da posição com dados concretos
4. Percentual de diferença entre posições
5. Análise do gap entre 1º e último`
	case questionJobMatch:
		return `
## INSTRUÇÃO PARA MATCH COM VAGA:
OBRIGATÓRIO calcular:
- % de match de skills (candidato vs vaga)
- Score ponderado considerando senioridade
- Lista de skills presentes e ausentes
- Ranking dos top 3 candidatos com percentuais
- Recomendação final com justificativa`
	case questionIndividual:
		return `
## INSTRUÇÃO PARA ANÁLISE INDIVIDUAL:
OBRIGATÓRIO incluir:
1. Resumo do perfil (senioridade, score, skills)
2. Análise comparativa com a média do sistema
3. Pontos fortes (top 3) e fracos (top 3)
4. Vaga mais adequada com % de match
5. Plano de desenvolvimento (gaps a melhorar)`
	case questionStatistics:
		return `
## INSTRUÇÃO PARA ESTATÍSTICAS:
OBRIGATÓRIO apresentar:
- Números absolutos e percentuais
- Médias, distribuições
- Comparações entre grupos
- Insights acionáveis baseados nos números
- Recomendações baseadas nas estatísticas`
	default:
		return `
## INSTRUÇÃO GERAL:
Analise profundamente os dados fornecidos e responda com:
- Dados quantitativos (scores, percentuais)
- Comparações quando relevante
- Recomendações fundamentadas em números
- Próximos passos sugeridos`
	}
}

// BuildChatPrompt assembles the full analysis prompt: pre-computed
// metrics, per-candidate and per-job blocks, and instructions specific
// to the detected question type. The result is truncated to charLimit.
func BuildChatPrompt(candidates []CandidateContext, jobs []JobContext, query string, charLimit int) string {
	m := calculateMetrics(candidates)
	qt := detectQuestionType(query)

	prompt := fmt.Sprintf(`# SISTEMA DE ANÁLISE INTELIGENTE DE TALENTOS

## DADOS CONSOLIDADOS DO SISTEMA

### MÉTRICAS GERAIS CALCULADAS:
%s

### CANDIDATOS ANALISADOS (%d):
%s

### VAGAS DISPONÍVEIS (%d):
%s

%s

## REGRAS CRÍTICAS DE ANÁLISE:

1. **PROFUNDIDADE OBRIGATÓRIA**: Não responda superficialmente. Analise:
   - Scores (quantitativos)
   - Skills (match técnico)
   - Senioridade (alinhamento de nível)
   - Gaps e oportunidades

2. **CÁLCULOS OBRIGATÓRIOS** quando aplicável:
   - Percentual de match (skills do candidato vs skills da vaga)
   - Ranking comparativo entre candidatos
   - Análise de gaps (skills ausentes)
   - Score ponderado (hard skills 60%% + soft skills 40%%)

3. **FORMATO DA RESPOSTA**:
   - Use tabelas para comparações
   - Apresente números e percentuais
   - Justifique TODA recomendação com dados
   - Conclua com ação sugerida

4. **PROIBIDO**:
   - Respostas genéricas ("candidatos disponíveis")
   - Propaganda comercial
   - Informações inventadas
   - Listas simples sem análise

## PERGUNTA DO USUÁRIO:
%s

## SUA ANÁLISE PROFUNDA E FUNDAMENTADA:`,
		m.summary,
		len(candidates), formatCandidates(candidates, jobs),
		len(jobs), formatJobs(jobs, candidates),
		instructionsFor(qt),
		query)

	if charLimit > 0 {
		prompt = truncateRunes(prompt, charLimit)
	}
	return prompt
}

// truncateRunes cuts at a rune boundary so accented text stays valid.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func containsAnyWord(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if s == "" {
		return "N/A"
	}
	if cut := truncateRunes(s, max); cut != s {
		return cut + "..."
	}
	return s
}
