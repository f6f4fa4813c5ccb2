// Package chatbot answers recruiter questions about the candidate pool.
// It feeds the remote agent a prompt with pre-computed metrics and the
// candidate and job records, keeps per-user conversation history in
// Redis, and degrades to a local metrics summary when the agent is
// unreachable.
package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"talentscope/internal/agent"
	"talentscope/internal/config"
	"talentscope/internal/logger"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
)

// contextCandidateLimit caps how many candidates go into one prompt so
// the char budget is spent on the highest-scored ones.
const contextCandidateLimit = 50

var propagandaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)🚀.*?construir um time.*?\n`),
	regexp.MustCompile(`(?i)Vamos juntos.*?\n`),
	regexp.MustCompile(`(?i)Se você conhece alguém.*?\n`),
	regexp.MustCompile(`#\w+\s*`),
	regexp.MustCompile(`(?i)Na TalentScope.*?\n`),
	regexp.MustCompile(`(?is)Descubra.*?potencial.*?\n`),
	regexp.MustCompile(`(?i)Entre em contato.*?\n`),
	regexp.MustCompile(`(?i)revolucionando.*?\n`),
}

var blankLinesPattern = regexp.MustCompile(`\n\s*\n\s*\n+`)

// Service runs the chatbot.
type Service struct {
	client *agent.Client
	store  *storage.Storage
	cfg    *config.ChatbotConfig
}

// NewService wires the chatbot against the shared agent client and
// storage backends.
func NewService(cfg *config.Config, store *storage.Storage) *Service {
	return &Service{
		client: agent.NewClient(&cfg.Agent),
		store:  store,
		cfg:    &cfg.Chatbot,
	}
}

// Answer is one chatbot reply plus how it was produced.
type Answer struct {
	Content  string `json:"content"`
	Degraded bool   `json:"degraded"` // true when the agent was unavailable
}

// Ask answers one user question. The reply and the question are
// appended to the user's Redis history; history failures are logged and
// do not fail the request.
func (s *Service) Ask(ctx context.Context, userID, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	candidates, jobs, err := s.loadContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading chatbot context: %w", err)
	}

	answer := s.produceAnswer(ctx, candidates, jobs, question)

	s.recordHistory(ctx, userID, question, answer.Content)
	return answer, nil
}

// History returns the user's conversation so far.
func (s *Service) History(ctx context.Context, userID string) ([]storage.ChatMessage, error) {
	if s.store.Redis == nil {
		return nil, nil
	}
	return s.store.Redis.GetChatHistory(ctx, userID)
}

// Clear wipes the user's conversation.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if s.store.Redis == nil {
		return nil
	}
	return s.store.Redis.ClearChatHistory(ctx, userID)
}

func (s *Service) produceAnswer(ctx context.Context, candidates []CandidateContext, jobs []JobContext, question string) *Answer {
	if s.client.Configured() {
		prompt := BuildChatPrompt(candidates, jobs, question, s.cfg.PromptCharLimit)

		callCtx := ctx
		if s.cfg.TimeoutSeconds > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
			defer cancel()
		}

		output, err := s.client.Execute(callCtx, prompt, s.cfg.MaxLength)
		if err == nil {
			return &Answer{Content: CleanReply(output)}
		}
		logger.Warn().Err(err).Msg("chatbot agent call failed, answering from local metrics")
	}

	return &Answer{Content: localSummaryAnswer(candidates, jobs), Degraded: true}
}

// loadContext pulls the analyzed candidate pool and open jobs from
// MySQL and maps them into prompt contexts. Candidates come back
// score-descending, so the limit keeps the strongest profiles.
func (s *Service) loadContext(ctx context.Context) ([]CandidateContext, []JobContext, error) {
	if s.store.MySQL == nil {
		return nil, nil, fmt.Errorf("mysql storage not available")
	}

	records, _, err := s.store.MySQL.ListCandidates(ctx, storage.CandidateFilter{Limit: contextCandidateLimit})
	if err != nil {
		return nil, nil, err
	}
	jobRecords, err := s.store.MySQL.ListJobs(ctx, "")
	if err != nil {
		return nil, nil, err
	}

	jobs := make([]JobContext, 0, len(jobRecords))
	jobTitleByID := make(map[string]string, len(jobRecords))
	for _, j := range jobRecords {
		jobs = append(jobs, JobContext{
			ID:             j.JobID,
			Title:          j.Title,
			Department:     j.Department,
			RequiredSkills: skillsFromJSON(j.SkillsJSON),
			Description:    j.Description,
		})
		jobTitleByID[j.JobID] = j.Title
	}

	candidates := make([]CandidateContext, 0, len(records))
	for _, c := range records {
		jobTitle := ""
		if c.JobID != nil {
			jobTitle = jobTitleByID[*c.JobID]
		}
		candidates = append(candidates, candidateContext(c, jobTitle))
	}
	return candidates, jobs, nil
}

// candidateContext flattens one candidate row, digging skills and
// feedback out of the stored analysis document.
func candidateContext(c models.Candidate, jobTitle string) CandidateContext {
	ctx := CandidateContext{
		ID:             c.CandidateID,
		Name:           c.Name,
		JobTitle:       jobTitle,
		Seniority:      c.Seniority,
		Score:          floatOrZero(c.Score),
		HardScore:      floatOrZero(c.TechnicalScore),
		SoftScore:      floatOrZero(c.SoftSkillScore),
		Recommendation: c.Recommendation,
	}

	if len(c.AnalysisJSON) > 0 {
		var analysis struct {
			MainSkills []string `json:"main_skills"`
			Strengths  []string `json:"strengths"`
			Weaknesses []string `json:"weaknesses"`
		}
		if err := json.Unmarshal(c.AnalysisJSON, &analysis); err == nil {
			ctx.Skills = analysis.MainSkills
			ctx.Strengths = strings.Join(analysis.Strengths, "; ")
			ctx.Weaknesses = strings.Join(analysis.Weaknesses, "; ")
		}
	}
	return ctx
}

// CleanReply strips the marketing boilerplate the agent sometimes tacks
// onto replies and collapses the blank lines left behind.
func CleanReply(text string) string {
	cleaned := text
	for _, pattern := range propagandaPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = blankLinesPattern.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// localSummaryAnswer is the degraded reply: the same metrics the agent
// would have received, rendered directly.
func localSummaryAnswer(candidates []CandidateContext, jobs []JobContext) string {
	m := calculateMetrics(candidates)
	if len(candidates) == 0 {
		return "O assistente de análise está indisponível no momento e ainda não há candidatos cadastrados."
	}
	return fmt.Sprintf(`O assistente de análise está indisponível no momento. Resumo direto dos dados:

Candidatos: %d | Vagas: %d
%s

Tente novamente em alguns minutos para uma análise completa.`,
		len(candidates), len(jobs), strings.TrimSpace(m.summary))
}

func (s *Service) recordHistory(ctx context.Context, userID, question, answer string) {
	if s.store.Redis == nil || userID == "" {
		return
	}
	now := time.Now()
	for _, msg := range []storage.ChatMessage{
		{Role: "user", Content: question, Timestamp: now},
		{Role: "assistant", Content: answer, Timestamp: now},
	} {
		if err := s.store.Redis.AppendChatMessage(ctx, userID, msg); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("failed to append chat history")
			return
		}
	}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func skillsFromJSON(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var skills []string
	if err := json.Unmarshal(raw, &skills); err != nil {
		return ""
	}
	return strings.Join(skills, ", ")
}
