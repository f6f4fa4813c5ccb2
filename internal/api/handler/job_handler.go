package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/api/middleware"
	"talentscope/internal/constants"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
)

// JobHandler exposes the job posting CRUD endpoints.
type JobHandler struct {
	store *storage.Storage
}

func NewJobHandler(store *storage.Storage) *JobHandler {
	return &JobHandler{store: store}
}

type jobRequest struct {
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Requirements string   `json:"requirements"`
	SalaryRange  string   `json:"salary_range"`
	Skills       []string `json:"skills"`
	Status       string   `json:"status"`
}

// Create adds a job posting.
func (h *JobHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req jobRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(c, consts.StatusBadRequest, "title is required")
		return
	}

	job := &models.Job{
		JobID:        storage.NewID(),
		Title:        req.Title,
		Department:   req.Department,
		Location:     req.Location,
		Description:  req.Description,
		Requirements: req.Requirements,
		SalaryRange:  req.SalaryRange,
		SkillsJSON:   models.SliceToJSON(req.Skills),
		Status:       constants.JobStatusActive,
	}
	if user := middleware.CurrentUser(c); user != nil {
		job.CreatedByUserID = user.UserID
	}

	if err := h.store.MySQL.CreateJob(ctx, job); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusCreated, job)
}

// List returns jobs, optionally filtered by ?status=.
func (h *JobHandler) List(ctx context.Context, c *app.RequestContext) {
	status := c.Query("status")
	if status != "" && status != constants.JobStatusActive && status != constants.JobStatusClosed {
		respondError(c, consts.StatusBadRequest, "unknown job status")
		return
	}

	jobs, err := h.store.MySQL.ListJobs(ctx, status)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"jobs": jobs, "total": len(jobs)})
}

// Get returns one job.
func (h *JobHandler) Get(ctx context.Context, c *app.RequestContext) {
	job, err := h.store.MySQL.GetJob(ctx, c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "job not found")
		return
	}
	c.JSON(consts.StatusOK, job)
}

// Update patches a job. Only the provided fields change.
func (h *JobHandler) Update(ctx context.Context, c *app.RequestContext) {
	var req map[string]interface{}
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}

	updates := make(map[string]interface{})
	for _, field := range []string{"title", "department", "location", "description", "requirements", "salary_range"} {
		if v, ok := req[field].(string); ok {
			updates[field] = v
		}
	}
	if v, ok := req["status"].(string); ok {
		if v != constants.JobStatusActive && v != constants.JobStatusClosed {
			respondError(c, consts.StatusBadRequest, "unknown job status")
			return
		}
		updates["status"] = v
	}
	if v, ok := req["skills"].([]interface{}); ok {
		skills := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				skills = append(skills, str)
			}
		}
		updates["skills_json"] = models.SliceToJSON(skills)
	}
	if len(updates) == 0 {
		respondError(c, consts.StatusBadRequest, "no updatable fields in request")
		return
	}

	jobID := c.Param("id")
	if err := h.store.MySQL.UpdateJob(ctx, jobID, updates); err != nil {
		respondStorageError(c, err, "job not found")
		return
	}

	job, err := h.store.MySQL.GetJob(ctx, jobID)
	if err != nil {
		respondStorageError(c, err, "job not found")
		return
	}
	c.JSON(consts.StatusOK, job)
}

// Close marks a job as no longer accepting candidates.
func (h *JobHandler) Close(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("id")
	if err := h.store.MySQL.UpdateJob(ctx, jobID, map[string]interface{}{"status": constants.JobStatusClosed}); err != nil {
		respondStorageError(c, err, "job not found")
		return
	}
	job, err := h.store.MySQL.GetJob(ctx, jobID)
	if err != nil {
		respondStorageError(c, err, "job not found")
		return
	}
	c.JSON(consts.StatusOK, job)
}

// Delete removes a job. Candidates keep their records; the foreign key
// goes null.
func (h *JobHandler) Delete(ctx context.Context, c *app.RequestContext) {
	if err := h.store.MySQL.DeleteJob(ctx, c.Param("id")); err != nil {
		respondStorageError(c, err, "job not found")
		return
	}
	c.JSON(consts.StatusOK, utils.H{"status": "deleted"})
}
