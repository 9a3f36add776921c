package handlers

import (
	"devicelog/metrics"
	"devicelog/middleware"
	"devicelog/models"
	"devicelog/validation"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// IngestLogs stores a batch of entries for the authenticated project.
// The batch is all-or-nothing.
func (h *Handler) IngestLogs(c *gin.Context) {
	project, ok := middleware.Project(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "project required"})
		return
	}

	var reqs []models.IngestRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	if err := validation.IngestBatch(reqs); err != nil {
		respondError(c, h.logger, err)
		return
	}

	clientIP := c.ClientIP()
	logs := make([]models.LogEntry, len(reqs))
	for i, req := range reqs {
		logs[i] = models.LogEntry{
			DeviceUUID:      req.DeviceUUID,
			DataType:        req.DataType,
			Key:             req.Key,
			Value:           req.Value,
			ProjectID:       &project.ID,
			SessionUUID:     req.SessionUUID,
			ClientIP:        &clientIP,
			ClientTimestamp: req.ClientTimestamp,
		}
	}

	stored, err := h.store.InsertLogsBatch(c.Request.Context(), logs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ids := make([]int64, len(stored))
	for i, entry := range stored {
		ids[i] = entry.ID
		metrics.LogsIngested.WithLabelValues(string(entry.DataType)).Inc()
	}

	h.logger.Debug("logs stored",
		zap.Int64("project_id", project.ID),
		zap.Int("count", len(stored)))

	c.JSON(http.StatusCreated, gin.H{
		"message": "logs stored",
		"count":   len(stored),
		"ids":     ids,
	})
}

func (h *Handler) GetLogs(c *gin.Context) {
	start := time.Now()

	var params models.QueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	filter, err := validation.ParseQuery(params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	logs, page, err := h.reports.ListLogs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	elapsed := time.Since(start).Milliseconds()
	c.JSON(http.StatusOK, models.LogsResponse{
		Logs:        logs,
		Pagination:  page,
		QueryTimeMs: &elapsed,
	})
}

func (h *Handler) GetLog(c *gin.Context) {
	id, err := parseID(c, "id", "log")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entry, err := h.reports.GetLog(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteLog(c *gin.Context) {
	id, err := parseID(c, "id", "log")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	deleted, err := h.reports.DeleteLog(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "log deleted", "deleted": deleted})
}
