package handlers

import (
	"devicelog/models"
	"devicelog/validation"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	if err := validation.ColumnMapping(req.ColumnMapping); err != nil {
		respondError(c, h.logger, err)
		return
	}

	project, err := h.store.CreateProject(c.Request.Context(), req.Name, req.ColumnMapping)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("project created", zap.Int64("id", project.ID), zap.String("name", project.Name))
	c.JSON(http.StatusCreated, project)
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.ProjectsResponse{
		Projects: projects,
		Total:    len(projects),
	})
}

func (h *Handler) GetProject(c *gin.Context) {
	projectID, err := parseID(c, "id", "project")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	project, err := h.store.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateColumnMapping replaces the mapping; keys not present lose their label.
func (h *Handler) UpdateColumnMapping(c *gin.Context) {
	projectID, err := parseID(c, "id", "project")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req models.UpdateColumnMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}
	if err := validation.ColumnMapping(req.ColumnMapping); err != nil {
		respondError(c, h.logger, err)
		return
	}

	project, err := h.store.UpdateColumnMapping(c.Request.Context(), projectID, req.ColumnMapping)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	projectID, err := parseID(c, "id", "project")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.store.DeleteProject(c.Request.Context(), projectID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("project deleted", zap.Int64("id", projectID))
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
