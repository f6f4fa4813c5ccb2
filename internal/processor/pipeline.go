// Package processor consumes resume-uploaded events and runs each
// candidate through the ingest pipeline: text extraction, content
// deduplication, contact enrichment and scoring.
package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"talentscope/internal/analyzer"
	"talentscope/internal/config"
	"talentscope/internal/constants"
	"talentscope/internal/logger"
	"talentscope/internal/parser"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
	"talentscope/internal/tracing"
	"talentscope/internal/types"
)

var tracer = otel.Tracer("talentscope/processor")

// candidateStore is the database surface the pipeline needs.
type candidateStore interface {
	GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error)
	UpdateCandidate(ctx context.Context, candidateID string, updates map[string]interface{}) error
	UpdateCandidateStatus(ctx context.Context, candidateID string, status string) error
	FindCandidateByTextMD5(ctx context.Context, md5Hex string) (*models.Candidate, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
}

// dedupCache is the Redis surface: text-MD5 ownership plus the
// raw-file reservation released on failure.
type dedupCache interface {
	GetTextMD5Candidate(ctx context.Context, md5Hex string) (string, error)
	SetTextMD5Candidate(ctx context.Context, md5Hex, candidateID string) error
	RemoveRawFileMD5(ctx context.Context, md5Hex string) error
}

// resumeObjects is the object-storage surface.
type resumeObjects interface {
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)
	GetParsedText(ctx context.Context, objectKey string) (string, error)
	UploadParsedText(ctx context.Context, candidateID string, text string) (string, error)
}

// Pipeline processes one resume-uploaded message end to end.
type Pipeline struct {
	db        candidateStore
	cache     dedupCache // nil when Redis is unavailable
	objects   resumeObjects
	extractor *parser.ExtractorChain
	analyzer  *analyzer.Analyzer
	cfg       *config.Config
}

// NewPipeline builds the pipeline. The PDF extractor chain tries the
// eino parser first and falls back to the pure-Go reader.
func NewPipeline(ctx context.Context, cfg *config.Config, store *storage.Storage) (*Pipeline, error) {
	stdLogger := log.New(os.Stdout, "[Extractor] ", log.LstdFlags)

	einoExtractor, err := parser.NewEinoPDFTextExtractor(ctx, parser.WithEinoLogger(stdLogger))
	if err != nil {
		return nil, fmt.Errorf("creating pdf extractor: %w", err)
	}

	timeout, err := time.ParseDuration(cfg.Analyzer.ExtractionTimeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	chain := parser.NewExtractorChain(timeout, stdLogger,
		einoExtractor,
		parser.NewFallbackPDFTextExtractor(),
	)

	p := &Pipeline{
		db:        store.MySQL,
		objects:   store.MinIO,
		extractor: chain,
		analyzer:  analyzer.New(cfg),
		cfg:       cfg,
	}
	if store.Redis != nil {
		p.cache = store.Redis
	}
	return p, nil
}

// Process handles one message. A returned error means the message
// should be redelivered; permanent failures mark the candidate failed
// and return nil so the queue moves on.
func (p *Pipeline) Process(ctx context.Context, msg storage.ResumeUploadedMessage) error {
	ctx, span := tracer.Start(ctx, "ProcessResumeUploaded",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("candidate_id", msg.CandidateID),
		attribute.String("source_channel", msg.SourceChannel),
		attribute.Bool("reanalyze", msg.Reanalyze),
	)

	candidate, err := p.db.GetCandidate(ctx, msg.CandidateID)
	if err != nil {
		if storage.IsNotFound(err) {
			// Candidate row deleted after upload; nothing to do.
			logger.Warn().Str("candidate_id", msg.CandidateID).Msg("candidate not found, dropping message")
			return nil
		}
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("loading candidate %s: %w", msg.CandidateID, err)
	}

	text, err := p.resumeText(ctx, candidate, msg)
	if err != nil {
		// Unreadable files do not become readable on redelivery.
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		p.markFailed(ctx, msg, "text extraction failed: "+err.Error())
		return nil
	}

	if dupID, isDup := p.duplicateOwner(ctx, text, candidate.CandidateID); isDup {
		span.SetAttributes(attribute.String("duplicate_of", dupID))
		logger.Info().
			Str("candidate_id", candidate.CandidateID).
			Str("duplicate_of", dupID).
			Msg("resume text already belongs to another candidate")
		p.markFailed(ctx, msg, fmt.Sprintf("duplicate resume content of candidate %s", dupID))
		return nil
	}

	if !msg.Reanalyze {
		if err := p.persistExtraction(ctx, candidate, text); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
			return err
		}
	}

	result := p.analyze(ctx, candidate, text)

	if err := p.persistAnalysis(ctx, candidate.CandidateID, result); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return err
	}

	logger.Info().
		Str("candidate_id", candidate.CandidateID).
		Float64("score", result.Score).
		Str("provider", result.Provider).
		Msg("candidate analysis stored")
	return nil
}

// resumeText obtains the resume plain text. Reanalysis reuses the
// stored extraction; fresh uploads go through the extractor chain.
func (p *Pipeline) resumeText(ctx context.Context, candidate *models.Candidate, msg storage.ResumeUploadedMessage) (string, error) {
	if msg.Reanalyze && candidate.ParsedTextKey != "" {
		text, err := p.objects.GetParsedText(ctx, candidate.ParsedTextKey)
		if err != nil {
			return "", fmt.Errorf("fetching stored parsed text: %w", err)
		}
		return text, nil
	}

	objectKey := msg.ObjectKey
	if objectKey == "" {
		objectKey = candidate.ResumeObjectKey
	}
	if objectKey == "" {
		return "", fmt.Errorf("candidate has no resume file")
	}

	data, err := p.objects.GetResumeFile(ctx, objectKey)
	if err != nil {
		return "", fmt.Errorf("downloading resume: %w", err)
	}

	extraction, err := p.extractor.Extract(ctx, data, objectKey)
	if err != nil {
		return "", err
	}
	return extraction.Text, nil
}

// duplicateOwner reports whether another candidate already owns this
// resume text. Redis answers first; MySQL is the authority when Redis
// has no record.
func (p *Pipeline) duplicateOwner(ctx context.Context, text, candidateID string) (string, bool) {
	sum := md5.Sum([]byte(text))
	textMD5 := hex.EncodeToString(sum[:])

	if p.cache != nil {
		if owner, err := p.cache.GetTextMD5Candidate(ctx, textMD5); err == nil && owner != "" && owner != candidateID {
			return owner, true
		}
	}

	existing, err := p.db.FindCandidateByTextMD5(ctx, textMD5)
	if err == nil && existing != nil && existing.CandidateID != candidateID {
		return existing.CandidateID, true
	}

	if p.cache != nil {
		if err := p.cache.SetTextMD5Candidate(ctx, textMD5, candidateID); err != nil {
			logger.Warn().Err(err).Msg("failed to cache text md5 owner")
		}
	}
	return "", false
}

// persistExtraction stores the parsed text in MinIO and fills the
// candidate's contact fields from the resume where they are empty.
// Manually entered values always win over heuristics.
func (p *Pipeline) persistExtraction(ctx context.Context, candidate *models.Candidate, text string) error {
	parsedKey, err := p.objects.UploadParsedText(ctx, candidate.CandidateID, text)
	if err != nil {
		return fmt.Errorf("uploading parsed text: %w", err)
	}

	sum := md5.Sum([]byte(text))
	updates := map[string]interface{}{
		"parsed_text_key":    parsedKey,
		"extracted_text_md5": hex.EncodeToString(sum[:]),
	}

	contact := parser.ExtractContactInfo(text, candidate.OriginalFilename)
	if candidate.Name == "" && contact.Name != "" {
		updates["name"] = contact.Name
	}
	if candidate.Email == "" {
		email := contact.Email
		if email == "" {
			email = parser.PlaceholderEmail(contact.Name)
		}
		updates["email"] = email
	}
	if candidate.Phone == "" && contact.Phone != "" {
		updates["phone"] = contact.Phone
	}
	if candidate.LinkedIn == "" && contact.LinkedIn != "" {
		updates["linkedin"] = contact.LinkedIn
	}
	if candidate.Location == "" && contact.Location != "" {
		updates["location"] = contact.Location
	}

	if err := p.db.UpdateCandidate(ctx, candidate.CandidateID, updates); err != nil {
		return fmt.Errorf("storing extraction results: %w", err)
	}

	// Keep the in-memory copy coherent for the analysis step.
	if name, ok := updates["name"].(string); ok {
		candidate.Name = name
	}
	return nil
}

func (p *Pipeline) analyze(ctx context.Context, candidate *models.Candidate, text string) *types.Analysis {
	req := analyzer.Request{
		CandidateName: candidate.Name,
		ResumeText:    text,
	}
	if candidate.JobID != nil {
		if job, err := p.db.GetJob(ctx, *candidate.JobID); err == nil {
			req.JobTitle = job.Title
			req.JobDescription = job.Description
			req.JobRequirements = job.Requirements
		}
	}
	return p.analyzer.Analyze(ctx, req)
}

func (p *Pipeline) persistAnalysis(ctx context.Context, candidateID string, result *types.Analysis) error {
	analysisJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"score":             result.Score,
		"technical_score":   result.TechnicalScore,
		"experience_score":  result.ExperienceScore,
		"soft_skill_score":  result.SoftSkillScore,
		"years_experience":  result.YearsExperience,
		"seniority":         result.Seniority,
		"recommendation":    result.Recommendation,
		"analysis_json":     analysisJSON,
		"analysis_provider": result.Provider,
		"status":            constants.CandidateStatusAnalyzed,
		"analyzed_at":       &now,
	}
	if err := p.db.UpdateCandidate(ctx, candidateID, updates); err != nil {
		return fmt.Errorf("storing analysis: %w", err)
	}
	return nil
}

// markFailed flags the candidate and releases the raw-file dedup entry
// so a corrected upload of the same file is not rejected.
func (p *Pipeline) markFailed(ctx context.Context, msg storage.ResumeUploadedMessage, reason string) {
	logger.Error().
		Str("candidate_id", msg.CandidateID).
		Str("reason", reason).
		Msg("resume processing failed")

	if err := p.db.UpdateCandidateStatus(ctx, msg.CandidateID, constants.CandidateStatusFailed); err != nil {
		logger.Error().Err(err).Str("candidate_id", msg.CandidateID).Msg("failed to mark candidate as failed")
	}
	if p.cache != nil && msg.RawFileMD5 != "" {
		if err := p.cache.RemoveRawFileMD5(ctx, msg.RawFileMD5); err != nil {
			logger.Warn().Err(err).Msg("failed to release raw file md5")
		}
	}
}
