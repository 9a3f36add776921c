package handlers

import (
	"devicelog/models"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps err onto the error taxonomy and writes it. Store and
// internal failures are logged; their details are not sent to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := models.ErrorKind(err)
	status := http.StatusInternalServerError
	message := "internal error"

	switch kind {
	case "validation_error":
		status = http.StatusBadRequest
		message = err.Error()
	case "not_found":
		status = http.StatusNotFound
		message = err.Error()
	case "store_error":
		message = "storage failure"
		var storeErr *models.StoreError
		if errors.As(err, &storeErr) && storeErr.Timeout() {
			status = http.StatusServiceUnavailable
			message = "storage timeout"
		}
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", kind),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: kind, Message: message})
}

// bindError turns a gin binding failure into a ValidationError.
func bindError(err error) error {
	return models.NewValidationError("%s", err.Error())
}

func parseID(c *gin.Context, name, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("invalid %s id", resource)
	}
	return id, nil
}
