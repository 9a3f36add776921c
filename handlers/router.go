package handlers

import (
	"devicelog/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(h.logger))

	r.GET("/health", HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logs := r.Group("/logs")
	{
		logs.POST("", middleware.AuthRequired(h.store), h.IngestLogs)
		logs.GET("", h.GetLogs)
		logs.GET("/:id", h.GetLog)
		logs.DELETE("/:id", h.DeleteLog)
	}

	reports := r.Group("/reports")
	{
		reports.GET("/devices/:device_uuid", h.DeviceReport)
		reports.GET("/time-range", h.TimeRangeReport)
		reports.GET("/errors", h.ErrorReport)
	}

	projects := r.Group("/projects")
	{
		projects.POST("", h.CreateProject)
		projects.GET("", h.ListProjects)
		projects.GET("/:id", h.GetProject)
		projects.DELETE("/:id", h.DeleteProject)
		projects.PUT("/:id/column-mapping", h.UpdateColumnMapping)
		projects.GET("/:id/reports/matrix", h.MatrixReport)
		projects.GET("/:id/reports/matrix/daily", h.DailyMatrixReport)
	}

	return r
}
