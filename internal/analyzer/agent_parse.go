package analyzer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"talentscope/internal/constants"
	"talentscope/internal/types"
)

const defaultAgentScore = 6.5

var (
	jsonBlockPattern = regexp.MustCompile(`\{[\s\S]*\}`)

	scoreTextPatterns = []*regexp.Regexp{
		regexp.MustCompile(`score[:\s]+(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`pontuação[:\s]+(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`nota[:\s]+(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*10`),
	}

	yearsTextPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*\+?\s*anos?\s+de\s+experiência`),
		regexp.MustCompile(`experiência[:\s]+(\d+)\s*\+?\s*anos?`),
		regexp.MustCompile(`(\d+)\s*\+?\s*years?\s+(?:of\s+)?experience`),
	}

	bulletItemPattern = regexp.MustCompile(`[-•*]\s*([^\n]+)`)
)

// ParseAgentOutput turns the agent's reply into a normalized analysis.
// Well-behaved replies carry a JSON document; anything else falls back
// to free-text scraping so a degraded reply still yields a usable
// score.
func ParseAgentOutput(output string, req Request) *types.Analysis {
	raw := parseAgentJSON(output)
	if raw == nil {
		raw = fallbackParse(output)
	}

	score := pickFloat(raw, defaultAgentScore, "score", "pontuacao", "nota", "overall_score")
	score = clampScore(score, 0, 10)

	skillNames := extractSkillNames(raw["hard_skills"])
	softSkills := toStringSlice(raw["soft_skills"])

	var years float64
	var positions []string
	if exp, ok := raw["experiencia"].(map[string]interface{}); ok {
		years = pickFloat(exp, 0, "anos", "years")
		positions = toStringSlice(firstNonNil(exp["cargos"], exp["positions"]))
	}

	strengths := toStringSlice(raw["pontos_fortes"])
	weaknesses := toStringSlice(raw["pontos_atencao"])
	risks := toStringSlice(raw["observacoes_riscos"])

	seniority := seniorityFromYearsAndScore(years, score)
	recommendation := recommendationForAgentScore(score)

	reason := "Candidate profile looks potentially suitable."
	if len(strengths) > 0 {
		reason = strengths[0]
	}

	return &types.Analysis{
		CandidateName:        req.CandidateName,
		Score:                score,
		TechnicalScore:       clampScore(score, 1, 10),
		ExperienceScore:      clampScore(years*1.2, 1, 10),
		SoftSkillScore:       clampScore(score-0.5, 1, 10),
		Seniority:            seniority,
		YearsExperience:      years,
		MainSkills:           capSlice(skillNames, 20),
		SoftSkills:           capSlice(softSkills, 10),
		Positions:            capSlice(positions, 10),
		Recommendation:       recommendation,
		RecommendationReason: reason,
		Summary: fmt.Sprintf("%s profile with %.0f years of experience. Overall score %.1f/10 with %d technical skills identified.",
			seniority, years, score, len(skillNames)),
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Risks:      risks,
		Provider:   constants.ProviderAgent,
	}
}

// parseAgentJSON pulls the first JSON object out of the reply. Returns
// nil when nothing decodes.
func parseAgentJSON(output string) map[string]interface{} {
	match := jsonBlockPattern.FindString(output)
	if match == "" {
		return nil
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil
	}
	return parsed
}

// fallbackParse scrapes a free-text reply into the same shape the JSON
// path produces.
func fallbackParse(output string) map[string]interface{} {
	skills := make([]interface{}, 0)
	for _, s := range extractSkillsFromText(output) {
		skills = append(skills, map[string]interface{}{"nome": s, "nivel": "Intermediário"})
	}

	return map[string]interface{}{
		"score":       extractScoreFromText(output),
		"hard_skills": skills,
		"soft_skills": []interface{}{"Comunicação", "Trabalho em equipe"},
		"experiencia": map[string]interface{}{
			"anos":   extractYearsFromText(output),
			"cargos": []interface{}{"Verificar manualmente"},
		},
		"pontos_fortes":  []interface{}{"Experiência relevante", "Perfil potencialmente aderente"},
		"pontos_atencao": []interface{}{"Validar escopo de atuação", "Verificar profundidade técnica"},
	}
}

// extractScoreFromText finds an explicit score mention, tolerating a
// decimal comma.
func extractScoreFromText(text string) float64 {
	normalized := strings.ReplaceAll(strings.ToLower(text), ",", ".")
	for _, pattern := range scoreTextPatterns {
		if m := pattern.FindStringSubmatch(normalized); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return clampScore(v, 0, 10)
			}
		}
	}
	return defaultAgentScore
}

// extractYearsFromText finds an explicit years-of-experience mention.
func extractYearsFromText(text string) float64 {
	lower := strings.ToLower(text)
	for _, pattern := range yearsTextPatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v
			}
		}
	}
	return 2.0
}

var skillsSectionPattern = regexp.MustCompile(`(?is)skills?\s+identificadas?[:\s]+(.*?)(\n\n|\d+\.|$)`)

// extractSkillsFromText scrapes a "skills identificadas" section.
func extractSkillsFromText(text string) []string {
	m := skillsSectionPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	content := m[1]

	var skills []string
	if items := bulletItemPattern.FindAllStringSubmatch(content, -1); len(items) > 0 {
		for _, item := range items {
			skills = append(skills, strings.TrimSpace(item[1]))
		}
	} else {
		for _, item := range strings.Split(content, ",") {
			item = strings.TrimSpace(item)
			if len(item) > 2 {
				skills = append(skills, item)
			}
		}
	}

	var filtered []string
	for _, s := range skills {
		if s != "" && len(s) < 50 {
			filtered = append(filtered, s)
		}
	}
	return capSlice(filtered, 20)
}

// extractSkillNames flattens the hard_skills payload, which may be a
// list of objects or bare strings, tolerating alternate key names.
func extractSkillNames(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	var names []string
	for _, item := range items {
		switch skill := item.(type) {
		case map[string]interface{}:
			for _, key := range []string{"nome", "name", "skill"} {
				if name, ok := skill[key].(string); ok && name != "" {
					names = append(names, name)
					break
				}
			}
		case string:
			if skill != "" {
				names = append(names, skill)
			}
		}
	}
	return names
}

// seniorityFromYearsAndScore buckets a candidate the way recruiters
// read score sheets: strong scores can compensate for thin tenure.
func seniorityFromYearsAndScore(years, score float64) string {
	switch {
	case years >= 7 || score >= 8.5:
		return constants.SenioritySenior
	case years >= 4 || score >= 7.0:
		return constants.SeniorityMid
	case years >= 2:
		return constants.SeniorityJunior
	default:
		return constants.SeniorityTrainee
	}
}

// recommendationForAgentScore maps the agent's overall score to a verdict.
func recommendationForAgentScore(score float64) string {
	switch {
	case score >= 8.0:
		return constants.RecommendationHigh
	case score >= 6.5:
		return constants.RecommendationYes
	case score >= 5.0:
		return constants.RecommendationReview
	default:
		return constants.RecommendationNo
	}
}

func clampScore(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pickFloat(m map[string]interface{}, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err == nil {
				return f
			}
		case int:
			return float64(v)
		}
	}
	return fallback
}

func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonNil(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func capSlice(s []string, max int) []string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
