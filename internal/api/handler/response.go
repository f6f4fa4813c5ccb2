// Package handler implements the HTTP endpoints. Handlers bind and
// validate the request, delegate to services and storage, and shape
// the JSON response; business rules live below this layer.
package handler

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"talentscope/internal/storage"
)

// respondError writes a JSON error body with the given status.
func respondError(c *app.RequestContext, status int, message string) {
	c.JSON(status, utils.H{"error": message})
}

// respondStorageError maps storage errors onto 404 vs 500.
func respondStorageError(c *app.RequestContext, err error, notFoundMessage string) {
	if storage.IsNotFound(err) {
		respondError(c, consts.StatusNotFound, notFoundMessage)
		return
	}
	respondError(c, consts.StatusInternalServerError, err.Error())
}
