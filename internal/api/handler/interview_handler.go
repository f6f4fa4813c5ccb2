package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/constants"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
)

// InterviewHandler exposes interview scheduling endpoints.
type InterviewHandler struct {
	store *storage.Storage
}

func NewInterviewHandler(store *storage.Storage) *InterviewHandler {
	return &InterviewHandler{store: store}
}

type interviewRequest struct {
	CandidateID string `json:"candidate_id"`
	ScheduledAt string `json:"scheduled_at"` // RFC 3339
	DurationMin int    `json:"duration_min"`
	Interviewer string `json:"interviewer"`
	MeetingLink string `json:"meeting_link"`
	Notes       string `json:"notes"`
}

// Create schedules an interview and moves the candidate into the
// interview stage.
func (h *InterviewHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req interviewRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}
	if req.CandidateID == "" {
		respondError(c, consts.StatusBadRequest, "candidate_id is required")
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		respondError(c, consts.StatusBadRequest, "scheduled_at must be RFC 3339")
		return
	}
	if scheduledAt.Before(time.Now()) {
		respondError(c, consts.StatusBadRequest, "scheduled_at must be in the future")
		return
	}

	candidate, err := h.store.MySQL.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}

	interview := &models.Interview{
		InterviewID: storage.NewID(),
		CandidateID: candidate.CandidateID,
		JobID:       candidate.JobID,
		ScheduledAt: scheduledAt,
		DurationMin: req.DurationMin,
		Interviewer: req.Interviewer,
		MeetingLink: req.MeetingLink,
		Notes:       req.Notes,
		Status:      constants.InterviewStatusScheduled,
	}
	if interview.DurationMin <= 0 {
		interview.DurationMin = 60
	}

	if err := h.store.MySQL.CreateInterview(ctx, interview); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}

	// The stage transition is advisory; a failure does not undo the
	// scheduled interview.
	_ = h.store.MySQL.UpdateCandidateStatus(ctx, candidate.CandidateID, constants.CandidateStatusInterview)

	c.JSON(consts.StatusCreated, interview)
}

// List returns interviews, filterable by ?candidate_id= and an
// RFC 3339 ?from=/?to= window.
func (h *InterviewHandler) List(ctx context.Context, c *app.RequestContext) {
	filter := storage.InterviewFilter{CandidateID: c.Query("candidate_id")}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, consts.StatusBadRequest, "from must be RFC 3339")
			return
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, consts.StatusBadRequest, "to must be RFC 3339")
			return
		}
		filter.To = &to
	}

	interviews, err := h.store.MySQL.ListInterviews(ctx, filter)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"interviews": interviews, "total": len(interviews)})
}

// Upcoming returns the next scheduled interviews, ?limit= capped.
func (h *InterviewHandler) Upcoming(ctx context.Context, c *app.RequestContext) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	interviews, err := h.store.MySQL.ListUpcomingInterviews(ctx, limit)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"interviews": interviews, "total": len(interviews)})
}

// Get returns one interview.
func (h *InterviewHandler) Get(ctx context.Context, c *app.RequestContext) {
	interview, err := h.store.MySQL.GetInterview(ctx, c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "interview not found")
		return
	}
	c.JSON(consts.StatusOK, interview)
}

// Update patches schedule, notes or status.
func (h *InterviewHandler) Update(ctx context.Context, c *app.RequestContext) {
	var req map[string]interface{}
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}

	updates := make(map[string]interface{})
	if v, ok := req["scheduled_at"].(string); ok {
		scheduledAt, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, consts.StatusBadRequest, "scheduled_at must be RFC 3339")
			return
		}
		updates["scheduled_at"] = scheduledAt
	}
	if v, ok := req["duration_min"].(float64); ok && v > 0 {
		updates["duration_min"] = int(v)
	}
	for _, field := range []string{"interviewer", "meeting_link", "notes"} {
		if v, ok := req[field].(string); ok {
			updates[field] = v
		}
	}
	if v, ok := req["status"].(string); ok {
		if !validInterviewStatus(v) {
			respondError(c, consts.StatusBadRequest, "unknown interview status")
			return
		}
		updates["status"] = v
	}
	if len(updates) == 0 {
		respondError(c, consts.StatusBadRequest, "no updatable fields in request")
		return
	}

	interviewID := c.Param("id")
	if err := h.store.MySQL.UpdateInterview(ctx, interviewID, updates); err != nil {
		respondStorageError(c, err, "interview not found")
		return
	}
	interview, err := h.store.MySQL.GetInterview(ctx, interviewID)
	if err != nil {
		respondStorageError(c, err, "interview not found")
		return
	}
	c.JSON(consts.StatusOK, interview)
}

func validInterviewStatus(status string) bool {
	switch status {
	case constants.InterviewStatusScheduled,
		constants.InterviewStatusCompleted,
		constants.InterviewStatusCanceled,
		constants.InterviewStatusNoShow:
		return true
	}
	return false
}
