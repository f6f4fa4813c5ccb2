package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/api/middleware"
	"talentscope/internal/chatbot"
)

// ChatHandler exposes the recruitment assistant.
type ChatHandler struct {
	bot *chatbot.Service
}

func NewChatHandler(bot *chatbot.Service) *ChatHandler {
	return &ChatHandler{bot: bot}
}

type chatRequest struct {
	Question string `json:"question"`
}

// Ask answers a question about the current candidate pool.
func (h *ChatHandler) Ask(ctx context.Context, c *app.RequestContext) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(c, consts.StatusBadRequest, "question is required")
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, consts.StatusUnauthorized, "authentication required")
		return
	}

	answer, err := h.bot.Ask(ctx, user.UserID, req.Question)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{
		"answer":   answer.Content,
		"degraded": answer.Degraded,
	})
}

// History returns the user's stored chat messages.
func (h *ChatHandler) History(ctx context.Context, c *app.RequestContext) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, consts.StatusUnauthorized, "authentication required")
		return
	}
	messages, err := h.bot.History(ctx, user.UserID)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"messages": messages, "total": len(messages)})
}

// Clear wipes the user's chat history.
func (h *ChatHandler) Clear(ctx context.Context, c *app.RequestContext) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, consts.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.bot.Clear(ctx, user.UserID); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"status": "cleared"})
}
