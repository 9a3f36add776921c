package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups devices and owns the column mapping used when rendering
// matrix reports. Each project has a unique API key used for ingestion.
type Project struct {
	ID            int64             `json:"id" db:"id"`
	UUID          uuid.UUID         `json:"uuid" db:"uuid"`
	Name          string            `json:"name" db:"name"`
	APIKey        string            `json:"api_key" db:"api_key"`
	ColumnMapping map[string]string `json:"column_mapping,omitempty" db:"column_mapping"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// Label returns the display label for key, or key itself when unmapped.
func (p *Project) Label(key string) string {
	if p == nil {
		return key
	}
	if label, ok := p.ColumnMapping[key]; ok && label != "" {
		return label
	}
	return key
}

// CreateProjectRequest is the payload for creating a new project.
// Name is validated to be 3-255 characters.
type CreateProjectRequest struct {
	Name          string            `json:"name" binding:"required,min=3,max=255"`
	ColumnMapping map[string]string `json:"column_mapping"`
}

type UpdateColumnMappingRequest struct {
	ColumnMapping map[string]string `json:"column_mapping"`
}

// ProjectsResponse is the standard response format for project listings.
type ProjectsResponse struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
}
