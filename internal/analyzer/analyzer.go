// Package analyzer scores candidates against jobs. Scoring runs
// through a provider chain: the remote agent first, a local heuristic
// engine when the agent is unreachable, and a static emergency payload
// when even the heuristic cannot run.
package analyzer

import (
	"context"
	"time"

	"talentscope/internal/agent"
	"talentscope/internal/config"
	"talentscope/internal/constants"
	"talentscope/internal/logger"
	"talentscope/internal/types"
)

// Analyzer runs the scoring provider chain.
type Analyzer struct {
	client    *agent.Client
	heuristic *HeuristicAnalyzer
	cfg       *config.AnalyzerConfig
	agentCfg  *config.AgentConfig
}

// New wires the chain from configuration. The remote agent is optional;
// without credentials the chain starts at the heuristic engine.
func New(cfg *config.Config) *Analyzer {
	return &Analyzer{
		client:    agent.NewClient(&cfg.Agent),
		heuristic: NewHeuristicAnalyzer(),
		cfg:       &cfg.Analyzer,
		agentCfg:  &cfg.Agent,
	}
}

// Analyze scores one candidate. It never returns nil: every failure
// degrades to the next provider and the last resort is a static
// manual-review payload.
func (a *Analyzer) Analyze(ctx context.Context, req Request) *types.Analysis {
	if a.client.Configured() {
		result, err := a.analyzeWithAgent(ctx, req)
		if err == nil {
			return result
		}
		logger.Warn().
			Err(err).
			Str("candidate", req.CandidateName).
			Msg("remote agent analysis failed, falling back to local heuristic")
	} else {
		logger.Debug().Msg("remote agent not configured, using local heuristic")
	}

	result := a.analyzeWithHeuristic(req)
	if result != nil {
		return result
	}

	logger.Error().
		Str("candidate", req.CandidateName).
		Msg("all analysis providers failed, returning emergency payload")
	return emergencyAnalysis(req)
}

func (a *Analyzer) analyzeWithAgent(ctx context.Context, req Request) (*types.Analysis, error) {
	start := time.Now()

	prompt := BuildAnalysisPrompt(req, a.cfg.ResumeTextLimit)
	output, err := a.client.Execute(ctx, prompt, a.agentCfg.MaxLength)
	if err != nil {
		return nil, err
	}

	result := ParseAgentOutput(output, req)
	result.Model = a.agentCfg.Model

	logger.Info().
		Str("candidate", req.CandidateName).
		Float64("score", result.Score).
		Str("recommendation", result.Recommendation).
		Dur("elapsed", time.Since(start)).
		Msg("remote agent analysis completed")
	return result, nil
}

// analyzeWithHeuristic shields the chain from a panic in the scoring
// engine; corrupt extracted text has produced surprising inputs before.
func (a *Analyzer) analyzeWithHeuristic(req Request) (result *types.Analysis) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("candidate", req.CandidateName).
				Msg("heuristic analyzer panicked")
			result = nil
		}
	}()
	return a.heuristic.Analyze(req)
}

// emergencyAnalysis is the terminal fallback: no scores, explicit
// manual-review verdict, so the candidate is never silently dropped.
func emergencyAnalysis(req Request) *types.Analysis {
	return &types.Analysis{
		CandidateName:        req.CandidateName,
		Score:                0,
		Seniority:            constants.SeniorityUnknown,
		Recommendation:       constants.RecommendationReview,
		RecommendationReason: "Automatic analysis unavailable, manual review required.",
		Summary:              "Analysis providers were unavailable for this candidate. Review the resume manually.",
		Risks:                []string{"Candidate not scored automatically"},
		Provider:             constants.ProviderEmergency,
		Degraded:             true,
	}
}
