package reports

import (
	"context"
	"devicelog/models"
)

// LogStore is the store contract the engine reads through. Implementations
// return entries ordered by (CreatedAt, ID) and wrap failures in
// *models.StoreError.
type LogStore interface {
	// ListLogs returns one page of matching entries plus the total match count.
	ListLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, int64, error)

	// ScanLogs returns every matching entry, ignoring pagination.
	ScanLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error)

	GetLog(ctx context.Context, id int64) (*models.LogEntry, error)
	DeleteLog(ctx context.Context, id int64) (bool, error)
	CountByDataType(ctx context.Context, filter models.LogFilter) (models.TypeCounts, error)
	DistinctDeviceCount(ctx context.Context, filter models.LogFilter) (int64, error)
}

type ProjectStore interface {
	GetProject(ctx context.Context, projectID int64) (*models.Project, error)
}
