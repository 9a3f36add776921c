package handlers

import (
	"devicelog/validation"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) DeviceReport(c *gin.Context) {
	report, err := h.reports.DeviceReport(c.Request.Context(), c.Param("device_uuid"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) TimeRangeReport(c *gin.Context) {
	start, end, err := validation.ParseTimeRange(c.Query("start_time"), c.Query("end_time"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	report, err := h.reports.TimeRangeReport(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) ErrorReport(c *gin.Context) {
	report, err := h.reports.ErrorReport(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) MatrixReport(c *gin.Context) {
	projectID, err := parseID(c, "id", "project")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	report, err := h.reports.OrganizationMatrix(c.Request.Context(), projectID,
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) DailyMatrixReport(c *gin.Context) {
	projectID, err := parseID(c, "id", "project")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	set, err := h.reports.OrganizationMatrixByDays(c.Request.Context(), projectID,
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, set)
}
