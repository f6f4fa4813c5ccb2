package handler

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/config"
	"talentscope/internal/constants"
	"talentscope/internal/importer"
	"talentscope/internal/logger"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
)

// maxResumeFileSize caps a single uploaded PDF.
const maxResumeFileSize = 16 << 20 // 16MB

// CandidateHandler exposes candidate intake and management endpoints.
type CandidateHandler struct {
	cfg   *config.Config
	store *storage.Storage
}

func NewCandidateHandler(cfg *config.Config, store *storage.Storage) *CandidateHandler {
	return &CandidateHandler{cfg: cfg, store: store}
}

type candidateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	Location string `json:"location"`
	JobID    string `json:"job_id"`
}

// Create registers a candidate manually. JSON bodies carry contact
// fields only; multipart bodies may attach a resume PDF under "file",
// which is stored and queued for analysis like a bulk upload.
func (h *CandidateHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req candidateRequest
	if strings.HasPrefix(string(c.ContentType()), "multipart/form-data") {
		req = candidateRequest{
			Name:     c.PostForm("name"),
			Email:    c.PostForm("email"),
			Phone:    c.PostForm("phone"),
			LinkedIn: c.PostForm("linkedin"),
			Location: c.PostForm("location"),
			JobID:    c.PostForm("job_id"),
		}
		if fileHeader, err := c.FormFile("file"); err == nil {
			h.createWithResume(ctx, c, req, fileHeader)
			return
		}
	} else if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(c, consts.StatusBadRequest, "name and email are required")
		return
	}
	if req.JobID != "" {
		if _, err := h.store.MySQL.GetJob(ctx, req.JobID); err != nil {
			respondStorageError(c, err, "job not found")
			return
		}
	}

	candidate := &models.Candidate{
		CandidateID:   storage.NewID(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		LinkedIn:      req.LinkedIn,
		Location:      req.Location,
		SourceChannel: constants.SourceManual,
		Status:        constants.CandidateStatusPending,
	}
	if req.JobID != "" {
		candidate.JobID = &req.JobID
	}

	if err := h.store.MySQL.CreateCandidate(ctx, candidate); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusCreated, candidate)
}

// List returns candidates with filters: ?job_id=, ?status=,
// ?min_score=, ?search=, ?limit=, ?offset=. Results are score-ordered.
func (h *CandidateHandler) List(ctx context.Context, c *app.RequestContext) {
	filter := storage.CandidateFilter{
		JobID:  c.Query("job_id"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if v := c.Query("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(c, consts.StatusBadRequest, "min_score must be a number")
			return
		}
		filter.MinScore = score
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	candidates, total, err := h.store.MySQL.ListCandidates(ctx, filter)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"candidates": candidates, "total": total})
}

// Get returns one candidate.
func (h *CandidateHandler) Get(ctx context.Context, c *app.RequestContext) {
	candidate, err := h.store.MySQL.GetCandidate(ctx, c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}
	c.JSON(consts.StatusOK, candidate)
}

// Update patches contact fields and status.
func (h *CandidateHandler) Update(ctx context.Context, c *app.RequestContext) {
	var req map[string]interface{}
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}

	updates := make(map[string]interface{})
	for _, field := range []string{"name", "email", "phone", "linkedin", "location"} {
		if v, ok := req[field].(string); ok {
			updates[field] = v
		}
	}
	if v, ok := req["status"].(string); ok {
		if !validCandidateStatus(v) {
			respondError(c, consts.StatusBadRequest, "unknown candidate status")
			return
		}
		updates["status"] = v
	}
	if v, ok := req["job_id"].(string); ok {
		if v == "" {
			updates["job_id"] = nil
		} else {
			if _, err := h.store.MySQL.GetJob(ctx, v); err != nil {
				respondStorageError(c, err, "job not found")
				return
			}
			updates["job_id"] = v
		}
	}
	if len(updates) == 0 {
		respondError(c, consts.StatusBadRequest, "no updatable fields in request")
		return
	}

	candidateID := c.Param("id")
	if err := h.store.MySQL.UpdateCandidate(ctx, candidateID, updates); err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}
	candidate, err := h.store.MySQL.GetCandidate(ctx, candidateID)
	if err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}
	c.JSON(consts.StatusOK, candidate)
}

// Delete removes the candidate row and, best effort, the stored files.
func (h *CandidateHandler) Delete(ctx context.Context, c *app.RequestContext) {
	candidateID := c.Param("id")
	candidate, err := h.store.MySQL.GetCandidate(ctx, candidateID)
	if err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}

	if err := h.store.MySQL.DeleteCandidate(ctx, candidateID); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}

	if h.store.MinIO != nil && candidate.ResumeObjectKey != "" {
		if err := h.store.MinIO.DeleteResumeFile(ctx, candidate.ResumeObjectKey); err != nil {
			logger.Warn().Err(err).Str("candidate_id", candidateID).Msg("failed to delete resume file")
		}
	}
	if h.store.Redis != nil && candidate.RawFileMD5 != "" {
		if err := h.store.Redis.RemoveRawFileMD5(ctx, candidate.RawFileMD5); err != nil {
			logger.Warn().Err(err).Str("candidate_id", candidateID).Msg("failed to release raw file md5")
		}
	}
	c.JSON(consts.StatusOK, utils.H{"status": "deleted"})
}

type bulkUploadResult struct {
	Filename    string `json:"filename"`
	CandidateID string `json:"candidate_id,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// BulkUpload accepts multipart PDFs under the "files" field, stores
// each one and queues it for async processing. Duplicate files (by raw
// MD5) are skipped, not failed.
func (h *CandidateHandler) BulkUpload(ctx context.Context, c *app.RequestContext) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, consts.StatusBadRequest, "multipart form required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		// Single-file clients use "file".
		files = form.File["file"]
	}
	if len(files) == 0 {
		respondError(c, consts.StatusBadRequest, "no files in request")
		return
	}

	jobID := c.PostForm("job_id")
	if jobID != "" {
		if _, err := h.store.MySQL.GetJob(ctx, jobID); err != nil {
			respondStorageError(c, err, "job not found")
			return
		}
	}

	results := make([]bulkUploadResult, 0, len(files))
	accepted := 0
	for _, fileHeader := range files {
		result := h.ingestResumeFile(ctx, fileHeader, jobID, nil, constants.SourceBulkUpload)
		if result.Status == "queued" {
			accepted++
		}
		results = append(results, result)
	}

	c.JSON(consts.StatusOK, utils.H{
		"accepted": accepted,
		"total":    len(files),
		"results":  results,
	})
}

// createWithResume handles manual intake with an attached PDF: the
// provided contact fields seed the candidate and the resume goes
// through the same stored-then-queued flow as a bulk upload.
func (h *CandidateHandler) createWithResume(ctx context.Context, c *app.RequestContext, req candidateRequest, fileHeader *multipart.FileHeader) {
	if req.JobID != "" {
		if _, err := h.store.MySQL.GetJob(ctx, req.JobID); err != nil {
			respondStorageError(c, err, "job not found")
			return
		}
	}

	result := h.ingestResumeFile(ctx, fileHeader, req.JobID, &req, constants.SourceManual)
	switch result.Status {
	case "queued":
		candidate, err := h.store.MySQL.GetCandidate(ctx, result.CandidateID)
		if err != nil {
			respondStorageError(c, err, "candidate not found")
			return
		}
		c.JSON(consts.StatusCreated, candidate)
	case "duplicate_skipped":
		respondError(c, consts.StatusConflict, "this resume file was already uploaded")
	default:
		respondError(c, consts.StatusBadRequest, result.Error)
	}
}

// ingestResumeFile handles one uploaded resume: dedup by file MD5,
// create the pending candidate, store the file, publish the event.
// seed, when present, pre-fills contact fields the extractor would
// otherwise infer.
func (h *CandidateHandler) ingestResumeFile(ctx context.Context, fileHeader *multipart.FileHeader, jobID string, seed *candidateRequest, sourceChannel string) bulkUploadResult {
	result := bulkUploadResult{Filename: fileHeader.Filename}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".pdf" {
		result.Status = "rejected"
		result.Error = "only PDF files are accepted"
		return result
	}
	if fileHeader.Size > maxResumeFileSize {
		result.Status = "rejected"
		result.Error = "file exceeds the 16MB limit"
		return result
	}

	file, err := fileHeader.Open()
	if err != nil {
		result.Status = "failed"
		result.Error = "cannot open uploaded file"
		return result
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxResumeFileSize+1))
	if err != nil {
		result.Status = "failed"
		result.Error = "cannot read uploaded file"
		return result
	}

	sum := md5.Sum(fileBytes)
	fileMD5 := hex.EncodeToString(sum[:])

	if h.store.Redis != nil {
		exists, err := h.store.Redis.CheckRawFileMD5Exists(ctx, fileMD5)
		if err != nil {
			result.Status = "failed"
			result.Error = fmt.Sprintf("dedup check failed: %v", err)
			return result
		}
		if exists {
			result.Status = "duplicate_skipped"
			return result
		}
	}

	candidate := &models.Candidate{
		CandidateID:      storage.NewID(),
		SourceChannel:    sourceChannel,
		OriginalFilename: fileHeader.Filename,
		RawFileMD5:       fileMD5,
		Status:           constants.CandidateStatusPending,
	}
	if seed != nil {
		candidate.Name = seed.Name
		candidate.Email = seed.Email
		candidate.Phone = seed.Phone
		candidate.LinkedIn = seed.LinkedIn
		candidate.Location = seed.Location
	}
	if jobID != "" {
		candidate.JobID = &jobID
	}

	objectKey, _, err := h.store.MinIO.UploadResumeFile(ctx, candidate.CandidateID, ext, bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		result.Status = "failed"
		result.Error = fmt.Sprintf("storing file failed: %v", err)
		return result
	}
	candidate.ResumeObjectKey = objectKey

	if err := h.store.MySQL.CreateCandidate(ctx, candidate); err != nil {
		result.Status = "failed"
		result.Error = fmt.Sprintf("creating candidate failed: %v", err)
		return result
	}

	if h.store.Redis != nil {
		if err := h.store.Redis.AddRawFileMD5(ctx, fileMD5); err != nil {
			// Text-level dedup in the pipeline is the second line of
			// defense, so the upload proceeds.
			logger.Warn().Err(err).Str("md5", fileMD5).Msg("failed to record raw file md5")
		}
	}

	if err := h.publishUploaded(ctx, candidate, false); err != nil {
		result.Status = "failed"
		result.Error = fmt.Sprintf("queueing for processing failed: %v", err)
		return result
	}

	result.CandidateID = candidate.CandidateID
	result.Status = "queued"
	return result
}

func (h *CandidateHandler) publishUploaded(ctx context.Context, candidate *models.Candidate, reanalyze bool) error {
	msg := storage.ResumeUploadedMessage{
		CandidateID:      candidate.CandidateID,
		ObjectKey:        candidate.ResumeObjectKey,
		OriginalFilename: candidate.OriginalFilename,
		RawFileMD5:       candidate.RawFileMD5,
		SourceChannel:    candidate.SourceChannel,
		UploadedAt:       time.Now(),
		Reanalyze:        reanalyze,
	}
	if candidate.JobID != nil {
		msg.JobID = *candidate.JobID
	}
	return h.store.RabbitMQ.PublishJSON(
		ctx,
		h.cfg.RabbitMQ.ResumeEventsExchange,
		h.cfg.RabbitMQ.ResumeUploadedKey,
		msg,
		true,
	)
}

// Import loads candidates from a CSV or Excel sheet under the "file"
// field. Rows already registered for the job (same email) are skipped.
func (h *CandidateHandler) Import(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, consts.StatusBadRequest, "file is required")
		return
	}
	jobID := c.PostForm("job_id")
	if jobID != "" {
		if _, err := h.store.MySQL.GetJob(ctx, jobID); err != nil {
			respondStorageError(c, err, "job not found")
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, consts.StatusInternalServerError, "cannot open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeFileSize))
	if err != nil {
		respondError(c, consts.StatusInternalServerError, "cannot read uploaded file")
		return
	}

	parsed, err := importer.Parse(fileHeader.Filename, data)
	if err != nil {
		respondError(c, consts.StatusBadRequest, err.Error())
		return
	}

	knownEmails, err := h.emailsForJob(ctx, jobID)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}

	importErrors := parsed.Errors
	candidates := make([]models.Candidate, 0, len(parsed.Records))
	for _, record := range parsed.Records {
		email := strings.ToLower(record.Email)
		if knownEmails[email] {
			importErrors = append(importErrors, fmt.Sprintf("line %d: email %s already registered for this job", record.Line, record.Email))
			continue
		}
		knownEmails[email] = true

		candidate := models.Candidate{
			CandidateID:   storage.NewID(),
			Name:          record.Name,
			Email:         record.Email,
			Phone:         record.Phone,
			LinkedIn:      record.LinkedIn,
			SourceChannel: constants.SourceImport,
			Status:        constants.CandidateStatusPending,
		}
		if jobID != "" {
			candidate.JobID = &jobID
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) > 0 {
		if err := h.store.MySQL.BatchInsertCandidates(ctx, candidates); err != nil {
			respondError(c, consts.StatusInternalServerError, err.Error())
			return
		}
	}

	logger.Info().
		Int("created", len(candidates)).
		Int("skipped", len(importErrors)).
		Str("job_id", jobID).
		Msg("candidate import finished")

	c.JSON(consts.StatusOK, utils.H{
		"created": len(candidates),
		"skipped": len(importErrors),
		"errors":  importErrors,
	})
}

func (h *CandidateHandler) emailsForJob(ctx context.Context, jobID string) (map[string]bool, error) {
	existing, _, err := h.store.MySQL.ListCandidates(ctx, storage.CandidateFilter{JobID: jobID})
	if err != nil {
		return nil, err
	}
	emails := make(map[string]bool, len(existing))
	for _, c := range existing {
		if c.Email != "" {
			emails[strings.ToLower(c.Email)] = true
		}
	}
	return emails, nil
}

// Reanalyze queues a candidate for re-scoring with the stored resume
// text.
func (h *CandidateHandler) Reanalyze(ctx context.Context, c *app.RequestContext) {
	candidate, err := h.store.MySQL.GetCandidate(ctx, c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}
	if candidate.ParsedTextKey == "" && candidate.ResumeObjectKey == "" {
		respondError(c, consts.StatusBadRequest, "candidate has no resume to analyze")
		return
	}

	if err := h.publishUploaded(ctx, candidate, true); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusAccepted, utils.H{"status": "reanalysis_queued"})
}

// ReanalyzeJob queues every resume-bearing candidate of a job for
// re-scoring, typically after the job's requirements changed.
func (h *CandidateHandler) ReanalyzeJob(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("id")
	if _, err := h.store.MySQL.GetJob(ctx, jobID); err != nil {
		respondStorageError(c, err, "job not found")
		return
	}

	candidates, _, err := h.store.MySQL.ListCandidates(ctx, storage.CandidateFilter{JobID: jobID})
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}

	queued := 0
	skipped := 0
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ParsedTextKey == "" && candidate.ResumeObjectKey == "" {
			skipped++
			continue
		}
		if err := h.publishUploaded(ctx, candidate, true); err != nil {
			respondError(c, consts.StatusInternalServerError, err.Error())
			return
		}
		queued++
	}

	logger.Info().
		Str("job_id", jobID).
		Int("queued", queued).
		Int("skipped", skipped).
		Msg("job reanalysis queued")

	c.JSON(consts.StatusAccepted, utils.H{"queued": queued, "skipped": skipped})
}

// ResumeURL returns a presigned download link for the original file.
func (h *CandidateHandler) ResumeURL(ctx context.Context, c *app.RequestContext) {
	candidate, err := h.store.MySQL.GetCandidate(ctx, c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}
	if candidate.ResumeObjectKey == "" {
		respondError(c, consts.StatusNotFound, "candidate has no resume file")
		return
	}

	url, err := h.store.MinIO.GetPresignedResumeURL(ctx, candidate.ResumeObjectKey, 15*time.Minute)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"url": url, "expires_in_seconds": 900})
}

func validCandidateStatus(status string) bool {
	switch status {
	case constants.CandidateStatusPending,
		constants.CandidateStatusAnalyzed,
		constants.CandidateStatusInterview,
		constants.CandidateStatusApproved,
		constants.CandidateStatusRejected,
		constants.CandidateStatusFailed:
		return true
	}
	return false
}
