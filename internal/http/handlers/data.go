package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/healthyback-backend/internal/http/response"
	"github.com/yungbote/healthyback-backend/internal/services"
)

type DataHandler struct {
	syncService services.SyncService
}

func NewDataHandler(syncService services.SyncService) *DataHandler {
	return &DataHandler{syncService: syncService}
}

// Sync returns the consolidated snapshot of every data type for the
// authenticated user, backfilled from the legacy partition where needed.
func (dh *DataHandler) Sync(c *gin.Context) {
	result, err := dh.syncService.ReadAll(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"data":              result.Data,
		"meta":              result.Meta,
		"legacyKeyNotFound": result.LegacyKeyNotFound,
	})
}

// Save persists one data type. The body is the payload itself, any JSON
// value; shape validation happens in the sync service.
func (dh *DataHandler) Save(c *gin.Context) {
	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := dh.syncService.WriteOne(c.Request.Context(), c.Param("type"), payload)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
