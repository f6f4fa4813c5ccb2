package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"talentscope/internal/constants"
	"talentscope/internal/types"
)

// HeuristicAnalyzer scores candidates locally, without any external
// API, from a categorized technology dictionary and calibrated score
// weights. It is the first fallback when the remote agent is down.
type HeuristicAnalyzer struct {
	techStack       map[string][]string
	actionVerbs     []string
	seniorityLevels []seniorityLevel
	educationLevels map[string]int
}

type seniorityLevel struct {
	name       string
	keywords   []string
	multiplier float64
}

// NewHeuristicAnalyzer builds the analyzer with its dictionaries. The
// keyword lists mix Portuguese and English because the resumes do.
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{
		techStack: map[string][]string{
			"languages": {
				"python", "java", "javascript", "typescript", "c#", "c++", "php",
				"ruby", "go", "rust", "swift", "kotlin", "scala", "r", "matlab",
				"perl", "dart", "elixir", "haskell", "lua", "bash", "shell",
			},
			"web_frameworks": {
				"react", "angular", "vue", "svelte", "django", "flask", "fastapi",
				"spring", "laravel", "rails", "express", "nest", "next", "nuxt",
				"gatsby", "remix", "astro",
			},
			"databases": {
				"mysql", "postgresql", "mongodb", "oracle", "sql server", "redis",
				"cassandra", "dynamodb", "elasticsearch", "mariadb", "sqlite",
				"neo4j", "couchdb", "influxdb", "clickhouse", "sql",
			},
			"cloud_devops": {
				"aws", "azure", "gcp", "google cloud", "docker", "kubernetes",
				"jenkins", "gitlab", "github actions", "terraform", "ansible",
				"circleci", "heroku", "vercel", "netlify", "digitalocean",
			},
			"tools_methodologies": {
				"git", "jira", "scrum", "agile", "kanban", "rest", "graphql",
				"microservices", "api", "tdd", "ci/cd", "devops",
				"clean code", "design patterns",
			},
			"data_science": {
				"machine learning", "deep learning", "tensorflow", "pytorch",
				"scikit-learn", "pandas", "numpy", "jupyter", "data analysis",
				"power bi", "tableau", "keras", "spark", "hadoop", "airflow",
			},
			"business_intelligence": {
				"power bi", "tableau", "qlik", "looker", "metabase",
				"dax", "powerquery", "sap", "salesforce",
			},
			"mobile": {
				"react native", "flutter", "ionic", "xamarin", "android",
				"ios", "objective-c",
			},
		},
		actionVerbs: []string{
			"desenvolveu", "implementou", "criou", "liderou", "gerenciou",
			"coordenou", "projetou", "arquitetou", "otimizou", "melhorou",
			"automatizou", "integrou", "migrou", "refatorou", "escalou",
			"deployed", "built", "created", "led", "managed", "designed",
			"maintained", "tested", "debugged", "configured", "desenvolvido",
			"realizado", "executado", "implantado",
		},
		// Ordered most senior first; first keyword hit wins.
		seniorityLevels: []seniorityLevel{
			{constants.SeniorityExpert, []string{"arquiteto", "architect", "tech lead", "staff", "principal", "head", "diretor", "gerente"}, 1.25},
			{constants.SenioritySenior, []string{"sênior", "senior", "sr", "especialista", "specialist", "lead"}, 1.15},
			{constants.SeniorityMid, []string{"pleno", "analista", "desenvolvedor", "developer", "engineer", "programador"}, 1.0},
			{constants.SeniorityJunior, []string{"júnior", "junior", "jr", "estagiário", "trainee", "assistente", "intern", "iniciante"}, 0.85},
		},
		educationLevels: map[string]int{
			"ensino médio":  1,
			"técnico":       2,
			"tecnólogo":     3,
			"graduação":     4,
			"bacharelado":   4,
			"licenciatura":  4,
			"pós-graduação": 5,
			"especialização": 5,
			"mba":           5,
			"mestrado":      6,
			"doutorado":     7,
			"phd":           7,
		},
	}
}

// Analyze scores the resume against the job description.
func (h *HeuristicAnalyzer) Analyze(req Request) *types.Analysis {
	cvLower := strings.ToLower(req.ResumeText)
	jobLower := strings.ToLower(req.JobDescription + " " + req.JobRequirements)

	cvSkills := h.extractTechnologies(cvLower)
	jobSkills := h.extractTechnologies(jobLower)
	match := calculateTechMatch(cvSkills, jobSkills)

	experience := h.analyzeExperience(req.ResumeText)
	seniority := h.detectSeniority(cvLower, experience.years)
	projects := h.analyzeProjects(cvLower)
	leadership := analyzeLeadership(cvLower)
	educationScore := h.analyzeEducation(cvLower)

	scores := calibratedScores(match, experience, projects, leadership, educationScore, seniority, len(req.ResumeText))
	feedback := buildFeedback(match, experience, projects, leadership, seniority, scores, cvSkills)

	return &types.Analysis{
		CandidateName:   req.CandidateName,
		Score:           scores.overall,
		TechnicalScore:  scores.technical,
		ExperienceScore: scores.experience,
		SoftSkillScore:  scores.soft,
		Seniority:       seniority.level,
		YearsExperience: experience.years,
		MainSkills:      capSlice(cvSkills, 20),
		SoftSkills:      leadership.responsibilities,
		Recommendation:  feedback.recommendation,
		RecommendationReason: feedback.reason,
		Summary:    feedback.summary,
		Strengths:  feedback.strengths,
		Weaknesses: feedback.weaknesses,
		Risks:      feedback.risks,
		Provider:   constants.ProviderHeuristic,
		Degraded:   true,
	}
}

// extractTechnologies finds every dictionary technology mentioned in
// text, deduplicated and sorted for stable output.
func (h *HeuristicAnalyzer) extractTechnologies(text string) []string {
	seen := make(map[string]bool)
	for _, techs := range h.techStack {
		for _, tech := range techs {
			pattern := `\b` + regexp.QuoteMeta(tech) + `\b`
			if matched, _ := regexp.MatchString(pattern, text); matched {
				seen[tech] = true
			}
		}
	}

	skills := make([]string, 0, len(seen))
	for skill := range seen {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

type techMatch struct {
	matched    []string
	missing    []string
	percentage float64
	score      float64
}

// calculateTechMatch compares resume skills against job skills. A job
// with no detectable skills is judged by resume breadth alone.
func calculateTechMatch(cvSkills, jobSkills []string) techMatch {
	cvSet := toSet(cvSkills)
	jobSet := toSet(jobSkills)

	if len(jobSet) == 0 {
		switch {
		case len(cvSet) >= 10:
			return techMatch{matched: capSlice(cvSkills, 10), percentage: 75.0, score: 7.5}
		case len(cvSet) >= 5:
			return techMatch{matched: capSlice(cvSkills, 10), percentage: 60.0, score: 6.0}
		default:
			return techMatch{matched: capSlice(cvSkills, 10), percentage: 40.0, score: 4.5}
		}
	}

	var matched, missing, extra []string
	for skill := range jobSet {
		if cvSet[skill] {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	for skill := range cvSet {
		if !jobSet[skill] {
			extra = append(extra, skill)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	if len(matched) == 0 {
		return techMatch{missing: missing, percentage: 0.0, score: 2.0}
	}

	percentage := float64(len(matched)) / float64(len(jobSet)) * 100
	baseScore := percentage / 10
	extraBonus := float64(len(extra)) * 0.15
	if extraBonus > 1.5 {
		extraBonus = 1.5
	}

	return techMatch{
		matched:    matched,
		missing:    missing,
		percentage: percentage,
		score:      clampScore(baseScore+extraBonus, 0, 10),
	}
}

type experienceData struct {
	years            float64
	actionVerbCount  int
	hasExplicitYears bool
}

var (
	explicitYearsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*\+?\s*anos?\s+de\s+experiência`),
		regexp.MustCompile(`experiência\s+de\s+(\d+)\s*\+?\s*anos?`),
		regexp.MustCompile(`(\d+)\s*\+?\s*years?\s+(?:of\s+)?experience`),
	}
	workPeriodPattern = regexp.MustCompile(`(\d{4})\s*(?:[-–]|até)\s*(\d{4}|presente|atual|present)`)
)

// analyzeExperience estimates years of experience from explicit
// mentions, then from YYYY-YYYY work periods, then from the density of
// achievement verbs.
func (h *HeuristicAnalyzer) analyzeExperience(text string) experienceData {
	textLower := strings.ToLower(text)

	var years float64
	for _, pattern := range explicitYearsPatterns {
		if m := pattern.FindStringSubmatch(textLower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > years {
				years = v
			}
		}
	}
	hasExplicit := years > 0

	if periods := workPeriodPattern.FindAllStringSubmatch(textLower, -1); len(periods) > 0 {
		currentYear := time.Now().Year()
		var total float64
		for _, period := range periods {
			startYear, _ := strconv.Atoi(period[1])
			endYear := currentYear
			if y, err := strconv.Atoi(period[2]); err == nil {
				endYear = y
			}
			span := float64(endYear - startYear)
			if span > 0 && span <= 50 {
				total += span
			}
		}
		if total > years {
			years = total
		}
	}

	actionCount := 0
	for _, verb := range h.actionVerbs {
		if strings.Contains(textLower, verb) {
			actionCount++
		}
	}

	if years == 0 {
		if actionCount >= 5 {
			years = 2.0
		} else {
			years = 1.0
		}
	}

	return experienceData{years: years, actionVerbCount: actionCount, hasExplicitYears: hasExplicit}
}

type seniorityResult struct {
	level      string
	multiplier float64
	fromTitle  bool
}

// detectSeniority reads title keywords first, then corrects against
// actual tenure: eight years outranks a junior title and a fresh grad
// does not get senior credit from a buzzword.
func (h *HeuristicAnalyzer) detectSeniority(text string, years float64) seniorityResult {
	result := seniorityResult{level: constants.SeniorityMid, multiplier: 1.0}

	for _, level := range h.seniorityLevels {
		for _, keyword := range level.keywords {
			if strings.Contains(text, keyword) {
				result = seniorityResult{level: level.name, multiplier: level.multiplier, fromTitle: true}
				break
			}
		}
		if result.fromTitle {
			break
		}
	}

	switch {
	case years >= 8:
		if result.level == constants.SeniorityJunior || result.level == constants.SeniorityMid {
			result.level = constants.SenioritySenior
			result.multiplier = 1.15
		}
	case years >= 5:
		if result.level == constants.SeniorityJunior {
			result.level = constants.SeniorityMid
			result.multiplier = 1.0
		}
	case years < 2:
		if result.level == constants.SenioritySenior || result.level == constants.SeniorityExpert {
			result.level = constants.SeniorityJunior
			result.multiplier = 0.85
		}
	}

	return result
}

type projectData struct {
	count      int
	indicators []string
}

var projectKeywords = []string{
	"projeto", "project", "desenvolveu", "implementou", "criou",
	"built", "created", "developed", "implemented", "launched",
	"desenvolvido", "implantado", "executado",
}

// analyzeProjects counts delivery mentions and flags complexity signals.
func (h *HeuristicAnalyzer) analyzeProjects(textLower string) projectData {
	count := 0
	for _, keyword := range projectKeywords {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		count += len(pattern.FindAllString(textLower, -1))
	}
	if count > 15 {
		count = 15
	}

	var indicators []string
	if strings.Contains(textLower, "arquitetura") || strings.Contains(textLower, "architecture") {
		indicators = append(indicators, "Software architecture experience")
	}
	if strings.Contains(textLower, "microserviços") || strings.Contains(textLower, "microservices") {
		indicators = append(indicators, "Microservices work")
	}
	if containsAny(textLower, "escalabilidade", "performance", "otimização", "optimization") {
		indicators = append(indicators, "Performance and scalability focus")
	}
	if containsAny(textLower, "migração", "refatoração", "modernização", "migration") {
		indicators = append(indicators, "System modernization experience")
	}

	switch {
	case count >= 8:
		indicators = append(indicators, fmt.Sprintf("%d+ projects or implementations in history", count))
	case count >= 3:
		indicators = append(indicators, fmt.Sprintf("%d projects or implementations identified", count))
	default:
		indicators = append(indicators, "Few detailed projects in resume")
	}

	return projectData{count: count, indicators: indicators}
}

type leadershipData struct {
	responsibilities []string
	mentorship       []string
	individualOnly   bool
}

// analyzeLeadership collects leadership and mentorship signals.
func analyzeLeadership(textLower string) leadershipData {
	leadershipKeywords := []struct {
		keyword     string
		description string
	}{
		{"líder", "Team leadership"},
		{"lead", "Technical leadership"},
		{"coordenação", "Project coordination"},
		{"gestão", "Team or project management"},
		{"coordenador", "Coordination"},
		{"gerente", "Management"},
	}

	var responsibilities []string
	for _, entry := range leadershipKeywords {
		if strings.Contains(textLower, entry.keyword) {
			responsibilities = append(responsibilities, entry.description)
		}
	}

	var mentorship []string
	if strings.Contains(textLower, "mentor") || strings.Contains(textLower, "mentoria") {
		mentorship = append(mentorship, "Mentorship experience")
	}
	if strings.Contains(textLower, "treinamento") || strings.Contains(textLower, "training") {
		mentorship = append(mentorship, "Team training")
	}
	if strings.Contains(textLower, "code review") || strings.Contains(textLower, "revisão") {
		mentorship = append(mentorship, "Code review participation")
	}

	individualOnly := len(responsibilities) == 0
	if individualOnly {
		responsibilities = []string{"Individual technical contributor"}
	}

	return leadershipData{
		responsibilities: responsibilities,
		mentorship:       mentorship,
		individualOnly:   individualOnly,
	}
}

// analyzeEducation returns the score of the highest degree mentioned.
func (h *HeuristicAnalyzer) analyzeEducation(textLower string) int {
	highest := 0
	for degree, level := range h.educationLevels {
		if strings.Contains(textLower, degree) && level > highest {
			highest = level
		}
	}
	return highest
}

type scoreSet struct {
	technical  float64
	experience float64
	soft       float64
	projects   float64
	overall    float64
}

// calibratedScores combines the dimension scores:
// technical 35%, experience 30%, soft skills 20%, projects 15%, then a
// dampened seniority multiplier and an education bonus, floored at 2.
func calibratedScores(match techMatch, experience experienceData, projects projectData,
	leadership leadershipData, educationScore int, seniority seniorityResult, cvLength int) scoreSet {

	technical := match.score
	if cvLength < 500 {
		technical *= 0.8
	}

	var expScore float64
	switch {
	case experience.years >= 8:
		expScore = 9.0
	case experience.years >= 5:
		expScore = 8.0
	case experience.years >= 3:
		expScore = 7.0
	case experience.years >= 2:
		expScore = 6.0
	default:
		expScore = 5.0
	}
	actionBonus := float64(experience.actionVerbCount) * 0.1
	if actionBonus > 1.0 {
		actionBonus = 1.0
	}
	expScore = clampScore(expScore+actionBonus, 0, 10)

	soft := 5.5
	switch {
	case len(leadership.responsibilities) >= 3 && !leadership.individualOnly:
		soft += 2.5
	case len(leadership.responsibilities) >= 2 && !leadership.individualOnly:
		soft += 1.5
	case !leadership.individualOnly:
		soft += 0.8
	}
	if len(leadership.mentorship) >= 2 {
		soft += 1.5
	} else if len(leadership.mentorship) == 1 {
		soft += 0.5
	}
	soft = clampScore(soft, 0, 10)

	var projectScore float64
	switch {
	case projects.count >= 10:
		projectScore = 8.5
	case projects.count >= 5:
		projectScore = 7.0
	case projects.count >= 3:
		projectScore = 6.0
	default:
		projectScore = 4.5
	}

	overall := technical*0.35 + expScore*0.30 + soft*0.20 + projectScore*0.15

	// Seniority moves the needle, but only half as far as the raw
	// multiplier would.
	seniorityFactor := 0.9 + (seniority.multiplier-1.0)*0.5
	overall *= seniorityFactor

	overall += float64(educationScore) * 0.2
	overall = clampScore(overall, 2.0, 10.0)

	return scoreSet{
		technical:  round1(technical),
		experience: round1(expScore),
		soft:       round1(soft),
		projects:   round1(projectScore),
		overall:    round1(overall),
	}
}

type feedbackData struct {
	strengths      []string
	weaknesses     []string
	risks          []string
	summary        string
	recommendation string
	reason         string
}

// buildFeedback writes the reviewer-facing narrative from the measured
// dimensions.
func buildFeedback(match techMatch, experience experienceData, projects projectData,
	leadership leadershipData, seniority seniorityResult, scores scoreSet, cvSkills []string) feedbackData {

	var strengths []string
	switch {
	case match.percentage >= 80:
		strengths = append(strengths, fmt.Sprintf("Excellent technical match (%.0f%% of required skills)", match.percentage))
	case match.percentage >= 60:
		strengths = append(strengths, fmt.Sprintf("Good technical alignment (%d matching technologies)", len(match.matched)))
	case match.percentage >= 40:
		strengths = append(strengths, fmt.Sprintf("Partial technical alignment (%d skills)", len(match.matched)))
	}
	if experience.years >= 5 {
		strengths = append(strengths, fmt.Sprintf("Solid experience of %.0f years in the field", experience.years))
	} else if experience.years >= 3 {
		strengths = append(strengths, fmt.Sprintf("Relevant experience of %.0f years", experience.years))
	}
	if projects.count >= 8 {
		strengths = append(strengths, fmt.Sprintf("Robust track record: %d+ projects or implementations", projects.count))
	} else if projects.count >= 4 {
		strengths = append(strengths, fmt.Sprintf("Practical experience: %d projects identified", projects.count))
	}
	if len(leadership.responsibilities) >= 2 && !leadership.individualOnly {
		strengths = append(strengths, "Leadership experience: "+strings.Join(capSlice(leadership.responsibilities, 2), ", "))
	}
	if seniority.level == constants.SenioritySenior || seniority.level == constants.SeniorityExpert {
		strengths = append(strengths, fmt.Sprintf("%s profile with professional maturity", seniority.level))
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Candidate with potential worth exploring in an interview")
	}

	var weaknesses []string
	switch {
	case match.percentage < 40:
		weaknesses = append(weaknesses, fmt.Sprintf("Significant technical gap: %d required skills absent from resume", len(match.missing)))
		if len(match.missing) > 0 {
			weaknesses = append(weaknesses, "Critical missing skills: "+strings.Join(capSlice(match.missing, 4), ", "))
		}
	case match.percentage < 60:
		weaknesses = append(weaknesses, fmt.Sprintf("Moderate technical gap: %d skills not evident", len(match.missing)))
		if len(match.missing) > 0 && len(match.missing) <= 3 {
			weaknesses = append(weaknesses, "Missing skills: "+strings.Join(match.missing, ", "))
		}
	}
	if len(cvSkills) < 5 {
		weaknesses = append(weaknesses, fmt.Sprintf("Limited technology portfolio (%d skills)", len(cvSkills)))
	}
	if experience.years < 2 {
		weaknesses = append(weaknesses, fmt.Sprintf("Early-stage professional experience (%.0f years)", experience.years))
	}
	if !experience.hasExplicitYears {
		weaknesses = append(weaknesses, "Years of experience not made explicit in resume")
	}
	if projects.count < 3 {
		weaknesses = append(weaknesses, "Few detailed projects or implementations")
	}
	if leadership.individualOnly {
		weaknesses = append(weaknesses, "Little evidence of leadership or team management")
	}
	if len(weaknesses) == 0 {
		weaknesses = append(weaknesses, "Adequate profile, validate cultural fit in interview")
	}

	score := scores.overall
	var recommendation, reason string
	switch {
	case score >= 8.5:
		recommendation = constants.RecommendationHigh
		reason = fmt.Sprintf("Exceptional candidate scoring %.1f/10. Strong technical alignment (%.0f%%) and %.0f years of experience.",
			score, match.percentage, experience.years)
	case score >= 7.0:
		recommendation = constants.RecommendationYes
		reason = fmt.Sprintf("Qualified candidate (score %.1f/10) with a good fit for the role. %d aligned skills and %.0f years of experience.",
			score, len(match.matched), experience.years)
	case score >= 5.5:
		recommendation = constants.RecommendationReview
		reason = fmt.Sprintf("Score %.1f/10. Potential identified but needs interview validation. Technical gap of %d skills.",
			score, len(match.missing))
	default:
		recommendation = constants.RecommendationNo
		reason = fmt.Sprintf("Score %.1f/10. Low adherence to requirements. Significant technical gap and limited experience.", score)
	}

	summaryParts := []string{
		fmt.Sprintf("%s professional with %.0f years of experience", seniority.level, experience.years),
	}
	if len(cvSkills) > 0 {
		summaryParts = append(summaryParts,
			fmt.Sprintf("Command of %d technologies, including %s", len(cvSkills), strings.Join(capSlice(cvSkills, 5), ", ")))
	}
	if projects.count >= 3 {
		summaryParts = append(summaryParts, fmt.Sprintf("%d+ projects or implementations in history", projects.count))
	}
	if len(match.matched) > 0 {
		summaryParts = append(summaryParts,
			fmt.Sprintf("Matches %d required skills: %s", len(match.matched), strings.Join(capSlice(match.matched, 4), ", ")))
	}
	summary := strings.Join(summaryParts, ". ") + "."

	var risks []string
	if match.percentage < 30 {
		risks = append(risks, "High risk: critical technical gap, extensive training required")
	} else if match.percentage < 50 {
		risks = append(risks, "Moderate risk: significant technical gap")
	}
	if experience.years < 1 {
		risks = append(risks, "High risk: very limited experience for the role")
	} else if experience.years < 2 && seniority.level != constants.SeniorityJunior {
		risks = append(risks, "Seniority may not align with actual experience")
	}
	if projects.count < 2 {
		risks = append(risks, "Few proven projects, validate in interview")
	}
	if len(cvSkills) < 4 {
		risks = append(risks, "Limited technology portfolio")
	}
	if len(risks) == 0 {
		risks = append(risks, "No critical risks identified")
	}

	return feedbackData{
		strengths:      strengths,
		weaknesses:     weaknesses,
		risks:          risks,
		summary:        summary,
		recommendation: recommendation,
		reason:         reason,
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
