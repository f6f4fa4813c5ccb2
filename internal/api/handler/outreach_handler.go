package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/api/middleware"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
	"talentscope/internal/whatsapp"
)

// OutreachHandler builds WhatsApp deep links and keeps the contact
// audit log.
type OutreachHandler struct {
	store *storage.Storage
}

func NewOutreachHandler(store *storage.Storage) *OutreachHandler {
	return &OutreachHandler{store: store}
}

type whatsappLinkRequest struct {
	Kind        string `json:"kind"` // interview_invite, approval, rejection, thank_you, reminder, custom
	Message     string `json:"message,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	MeetingLink string `json:"meeting_link,omitempty"`
	Hours       int    `json:"hours,omitempty"`
}

// WhatsAppLink returns a wa.me link with the templated message filled
// in and records the outreach.
func (h *OutreachHandler) WhatsAppLink(ctx context.Context, c *app.RequestContext) {
	candidate, err := h.store.MySQL.GetCandidate(ctx, c.Param("id"))
	if err != nil {
		respondStorageError(c, err, "candidate not found")
		return
	}
	if candidate.Phone == "" {
		respondError(c, consts.StatusBadRequest, "candidate has no phone number")
		return
	}

	var req whatsappLinkRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}

	jobTitle := ""
	if candidate.JobID != nil {
		if job, err := h.store.MySQL.GetJob(ctx, *candidate.JobID); err == nil {
			jobTitle = job.Title
		}
	}

	message, err := whatsapp.MessageForKind(req.Kind, candidate.Name, jobTitle, req.Date, req.Time, req.MeetingLink, req.Message, req.Hours)
	if err != nil {
		respondError(c, consts.StatusBadRequest, err.Error())
		return
	}

	link, err := whatsapp.Link(candidate.Phone, message)
	if err != nil {
		respondError(c, consts.StatusBadRequest, err.Error())
		return
	}

	entry := &models.OutreachLog{
		CandidateID: candidate.CandidateID,
		Channel:     "whatsapp",
		Phone:       whatsapp.FormatPhone(candidate.Phone),
		MessageKind: req.Kind,
		Link:        link,
	}
	if user := middleware.CurrentUser(c); user != nil {
		entry.UserID = user.UserID
	}
	if err := h.store.MySQL.CreateOutreachLog(ctx, entry); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"link":    link,
		"message": message,
	})
}

// History lists past outreach for a candidate.
func (h *OutreachHandler) History(ctx context.Context, c *app.RequestContext) {
	entries, err := h.store.MySQL.ListOutreachByCandidate(ctx, c.Param("id"))
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"outreach": entries, "total": len(entries)})
}
