package database

import (
	"context"
	"devicelog/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	db := integrationDB(t)

	ctx := context.Background()
	project, err := db.CreateProject(ctx, "Test Project", map[string]string{"temp": "Temperature"})

	require.NoError(t, err)
	assert.NotZero(t, project.ID)
	assert.NotEmpty(t, project.UUID)
	assert.Equal(t, "Test Project", project.Name)
	assert.True(t, len(project.APIKey) > 10, "API key should be generated")
	assert.Equal(t, map[string]string{"temp": "Temperature"}, project.ColumnMapping)
	assert.False(t, project.CreatedAt.IsZero())
	assert.False(t, project.UpdatedAt.IsZero())
}

func TestGetProjectByAPIKey(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	created, err := db.CreateProject(ctx, "Keyed", nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"issued key", created.APIKey, false},
		{"unknown key", "dlog_unknown", true},
		{"empty key", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.GetProjectByAPIKey(ctx, tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid API key")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.UUID, got.UUID)
			assert.Empty(t, got.ColumnMapping)
		})
	}
}

func TestListProjects(t *testing.T) {
	db := integrationDB(t)

	ctx := context.Background()

	projects, err := db.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	for _, name := range []string{"Project 1", "Project 2", "Project 3"} {
		_, err = db.CreateProject(ctx, name, nil)
		require.NoError(t, err)
	}

	projects, err = db.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 3)
}

func TestGetProject_NotFound(t *testing.T) {
	db := integrationDB(t)

	_, err := db.GetProject(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestUpdateColumnMapping(t *testing.T) {
	db := integrationDB(t)

	ctx := context.Background()

	created, err := db.CreateProject(ctx, "Test Project", map[string]string{"temp": "Temperature"})
	require.NoError(t, err)

	updated, err := db.UpdateColumnMapping(ctx, created.ID, map[string]string{"hum": "Humidity"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"hum": "Humidity"}, updated.ColumnMapping)

	_, err = db.UpdateColumnMapping(ctx, created.ID+100, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteProject(t *testing.T) {
	db := integrationDB(t)

	ctx := context.Background()

	created, err := db.CreateProject(ctx, "Test Project", nil)
	require.NoError(t, err)

	_, err = db.InsertLogsBatch(ctx, []models.LogEntry{
		{DeviceUUID: "dev-1", DataType: models.DataTypeRecord, Key: "k", ProjectID: &created.ID},
	})
	require.NoError(t, err)

	err = db.DeleteProject(ctx, created.ID)
	require.NoError(t, err)

	_, err = db.GetProject(ctx, created.ID)
	assert.Error(t, err)

	_, total, err := db.ListLogs(ctx, models.LogFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestDeleteProject_NotFound(t *testing.T) {
	db := integrationDB(t)

	err := db.DeleteProject(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}
