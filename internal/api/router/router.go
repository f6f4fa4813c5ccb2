package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/api/handler"
	"talentscope/internal/api/middleware"
	"talentscope/internal/auth"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth       *handler.AuthHandler
	Jobs       *handler.JobHandler
	Candidates *handler.CandidateHandler
	Interviews *handler.InterviewHandler
	Outreach   *handler.OutreachHandler
	Stats      *handler.StatsHandler
	Chat       *handler.ChatHandler
}

// RegisterRoutes wires the API route table.
func RegisterRoutes(h *server.Hertz, authService *auth.Service, handlers Handlers) {
	api := h.Group("/api/v1")

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)

	authed := api.Group("", middleware.Auth(authService))

	authed.POST("/auth/logout", handlers.Auth.Logout)
	authed.GET("/auth/me", handlers.Auth.Me)
	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.GET("/users", handlers.Auth.Users)
	admin.POST("/users/:id/admin", handlers.Auth.SetAdmin)
	admin.DELETE("/users/:id", handlers.Auth.DeleteUser)

	jobs := authed.Group("/jobs")
	jobs.POST("", handlers.Jobs.Create)
	jobs.GET("", handlers.Jobs.List)
	jobs.GET("/:id", handlers.Jobs.Get)
	jobs.PATCH("/:id", handlers.Jobs.Update)
	jobs.DELETE("/:id", middleware.RequireAdmin(), handlers.Jobs.Delete)
	jobs.POST("/:id/close", handlers.Jobs.Close)
	jobs.POST("/:id/reanalyze", handlers.Candidates.ReanalyzeJob)

	candidates := authed.Group("/candidates")
	candidates.POST("", handlers.Candidates.Create)
	candidates.GET("", handlers.Candidates.List)
	candidates.POST("/upload", handlers.Candidates.BulkUpload)
	candidates.POST("/import", handlers.Candidates.Import)
	candidates.GET("/:id", handlers.Candidates.Get)
	candidates.PATCH("/:id", handlers.Candidates.Update)
	candidates.DELETE("/:id", middleware.RequireAdmin(), handlers.Candidates.Delete)
	candidates.POST("/:id/reanalyze", handlers.Candidates.Reanalyze)
	candidates.GET("/:id/resume-url", handlers.Candidates.ResumeURL)
	candidates.POST("/:id/whatsapp", handlers.Outreach.WhatsAppLink)
	candidates.GET("/:id/outreach", handlers.Outreach.History)

	interviews := authed.Group("/interviews")
	interviews.POST("", handlers.Interviews.Create)
	interviews.GET("", handlers.Interviews.List)
	interviews.GET("/upcoming", handlers.Interviews.Upcoming)
	interviews.GET("/:id", handlers.Interviews.Get)
	interviews.PATCH("/:id", handlers.Interviews.Update)

	authed.GET("/stats/dashboard", handlers.Stats.Dashboard)

	chat := authed.Group("/chat")
	chat.POST("", handlers.Chat.Ask)
	chat.GET("/history", handlers.Chat.History)
	chat.DELETE("/history", handlers.Chat.Clear)
}
