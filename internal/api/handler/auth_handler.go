package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/api/middleware"
	"talentscope/internal/auth"
	"talentscope/internal/logger"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	IsAdmin     bool       `json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		UserID:      u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
	}
}

// Register creates a recruiter account.
func (h *AuthHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req registerRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(ctx, req.Username, req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, consts.StatusBadRequest, err.Error())
		return
	}

	logger.Info().Str("username", user.Username).Msg("user registered")
	c.JSON(consts.StatusCreated, toUserResponse(user))
}

// Login opens a session and returns the bearer token.
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUserDisabled):
			respondError(c, consts.StatusUnauthorized, err.Error())
		default:
			respondError(c, consts.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(consts.StatusOK, utils.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// Logout closes the current session.
func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	token := strings.TrimSpace(strings.TrimPrefix(string(c.GetHeader("Authorization")), "Bearer"))
	if err := h.auth.Logout(ctx, token); err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"status": "logged_out"})
}

// Users lists every account. Admin only; the route carries the guard.
func (h *AuthHandler) Users(ctx context.Context, c *app.RequestContext) {
	users, err := h.auth.Users(ctx)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(consts.StatusOK, utils.H{"users": out, "total": len(out)})
}

type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// SetAdmin grants or revokes admin access on an account. Admin only.
func (h *AuthHandler) SetAdmin(ctx context.Context, c *app.RequestContext) {
	var req setAdminRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, consts.StatusBadRequest, "invalid request body")
		return
	}
	actor := middleware.CurrentUser(c)
	if actor == nil {
		respondError(c, consts.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.auth.SetAdmin(ctx, actor.UserID, c.Param("id"), req.IsAdmin); err != nil {
		if storage.IsNotFound(err) {
			respondError(c, consts.StatusNotFound, "user not found")
			return
		}
		respondError(c, consts.StatusBadRequest, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"status": "updated"})
}

// DeleteUser removes an account. Admin only; self-deletion is rejected.
func (h *AuthHandler) DeleteUser(ctx context.Context, c *app.RequestContext) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		respondError(c, consts.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.auth.DeleteUser(ctx, actor.UserID, c.Param("id")); err != nil {
		if storage.IsNotFound(err) {
			respondError(c, consts.StatusNotFound, "user not found")
			return
		}
		respondError(c, consts.StatusBadRequest, err.Error())
		return
	}
	c.JSON(consts.StatusOK, utils.H{"status": "deleted"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(ctx context.Context, c *app.RequestContext) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, consts.StatusUnauthorized, "authentication required")
		return
	}
	c.JSON(consts.StatusOK, toUserResponse(user))
}
