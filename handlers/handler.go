package handlers

import (
	"context"
	"devicelog/models"
	"devicelog/reports"

	"go.uber.org/zap"
)

// Store is the write side and project catalogue behind the HTTP surface.
// Reads and reports go through reports.Service.
type Store interface {
	InsertLogsBatch(ctx context.Context, logs []models.LogEntry) ([]models.LogEntry, error)

	CreateProject(ctx context.Context, name string, columnMapping map[string]string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, projectID int64) (*models.Project, error)
	GetProjectByAPIKey(ctx context.Context, apiKey string) (*models.Project, error)
	UpdateColumnMapping(ctx context.Context, projectID int64, columnMapping map[string]string) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID int64) error
}

type Handler struct {
	store   Store
	reports *reports.Service
	logger  *zap.Logger
}

func NewHandler(store Store, svc *reports.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, reports: svc, logger: logger}
}
