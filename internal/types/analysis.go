package types

// ContactInfo is the contact data pulled from resume text by the
// heuristic extractors, used to pre-fill candidate records.
type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Location string `json:"location,omitempty"`
}

// Analysis is the normalized result of scoring one candidate against a
// job, regardless of which provider produced it.
type Analysis struct {
	// Identification echoed back for convenience.
	CandidateName string `json:"candidate_name,omitempty"`

	// Scores on a 0-10 scale.
	Score           float64 `json:"score"`
	TechnicalScore  float64 `json:"technical_score"`
	ExperienceScore float64 `json:"experience_score"`
	SoftSkillScore  float64 `json:"soft_skill_score"`

	// Profile extracted or inferred from the resume.
	Seniority       string   `json:"seniority"`        // Trainee, Junior, Mid, Senior
	YearsExperience float64  `json:"years_experience"`
	MainSkills      []string `json:"main_skills,omitempty"`
	SoftSkills      []string `json:"soft_skills,omitempty"`
	Education       string   `json:"education,omitempty"`
	Positions       []string `json:"positions,omitempty"`

	// Verdict.
	Recommendation       string   `json:"recommendation"`
	RecommendationReason string   `json:"recommendation_reason,omitempty"`
	Summary              string   `json:"summary,omitempty"`
	Strengths            []string `json:"strengths,omitempty"`
	Weaknesses           []string `json:"weaknesses,omitempty"`
	Risks                []string `json:"risks,omitempty"`

	// Provenance.
	Provider string `json:"provider"` // see constants.Provider*
	Model    string `json:"model,omitempty"`
	Degraded bool   `json:"degraded"` // true when a fallback provider answered
}

// ResumeExtraction is the output of the PDF text extraction chain.
type ResumeExtraction struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count,omitempty"`
	Extractor string `json:"extractor"` // which library produced the text
}
