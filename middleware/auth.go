package middleware

import (
	"context"
	"devicelog/models"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ProjectIDKey = "project_id"
	ProjectKey   = "project"
)

// ProjectLookup resolves an ingestion API key to its project.
type ProjectLookup interface {
	GetProjectByAPIKey(ctx context.Context, apiKey string) (*models.Project, error)
}

// AuthRequired authenticates a request with "Authorization: Bearer <api key>"
// and stores the owning project in the context.
func AuthRequired(projects ProjectLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "invalid authorization format")
			return
		}

		project, err := projects.GetProjectByAPIKey(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil || project == nil {
			unauthorized(c, "invalid API key")
			return
		}

		c.Set(ProjectIDKey, project.ID)
		c.Set(ProjectKey, project)

		c.Next()
	}
}

// Project returns the project stored by AuthRequired, if any.
func Project(c *gin.Context) (*models.Project, bool) {
	v, ok := c.Get(ProjectKey)
	if !ok {
		return nil, false
	}
	project, ok := v.(*models.Project)
	return project, ok
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": message})
}
