package handler

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/logger"
	"talentscope/internal/storage"
)

// StatsHandler serves the dashboard aggregates.
type StatsHandler struct {
	store *storage.Storage
}

func NewStatsHandler(store *storage.Storage) *StatsHandler {
	return &StatsHandler{store: store}
}

// Dashboard returns the aggregate snapshot. The MySQL computation is
// cached in Redis for a short window; cache misses or Redis outages
// fall through to the database.
func (h *StatsHandler) Dashboard(ctx context.Context, c *app.RequestContext) {
	if h.store.Redis != nil {
		if cached, err := h.store.Redis.GetCachedDashboardStats(ctx); err == nil && len(cached) > 0 {
			c.Data(consts.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	stats, err := h.store.MySQL.GetDashboardStats(ctx)
	if err != nil {
		respondError(c, consts.StatusInternalServerError, err.Error())
		return
	}

	if h.store.Redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := h.store.Redis.CacheDashboardStats(ctx, payload); err != nil {
				logger.Warn().Err(err).Msg("failed to cache dashboard stats")
			}
		}
	}

	c.JSON(consts.StatusOK, stats)
}
