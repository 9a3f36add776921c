package database

import (
	"context"
	"devicelog/models"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const projectColumns = "id, uuid, name, api_key, column_mapping, created_at, updated_at"

func (db *DB) GetProjectByAPIKey(ctx context.Context, apiKey string) (*models.Project, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE api_key = $1`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, apiKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invalid API key")
		}
		return nil, storeError("get project by api key", err)
	}

	return project, nil
}

// CreateProject inserts a project with a freshly generated API key.
// A nil column mapping is stored as an empty object.
func (db *DB) CreateProject(ctx context.Context, name string, columnMapping map[string]string) (*models.Project, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	apiKey := generateAPIKey()

	query := `
		INSERT INTO projects (name, api_key, column_mapping)
		VALUES ($1, $2, $3)
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query, name, apiKey, mappingOrEmpty(columnMapping)))
	if err != nil {
		return nil, storeError("create project", err)
	}

	db.logger.Info("created project", zap.String("name", project.Name), zap.Int64("id", project.ID))
	return project, nil
}

func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, storeError("list projects", err)
	}
	defer rows.Close()

	projects, err := scanProjects(rows)
	if err != nil {
		return nil, storeError("list projects", err)
	}
	return projects, nil
}

func (db *DB) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "project", ID: strconv.FormatInt(projectID, 10)}
		}
		return nil, storeError("get project", err)
	}

	return project, nil
}

// UpdateColumnMapping replaces the project's column mapping wholesale.
func (db *DB) UpdateColumnMapping(ctx context.Context, projectID int64, columnMapping map[string]string) (*models.Project, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	query := `
		UPDATE projects
		SET column_mapping = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID, mappingOrEmpty(columnMapping)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "project", ID: strconv.FormatInt(projectID, 10)}
		}
		return nil, storeError("update column mapping", err)
	}

	return project, nil
}

// DeleteProject removes a project. Its logs are removed by the
// ON DELETE CASCADE foreign key.
func (db *DB) DeleteProject(ctx context.Context, projectID int64) error {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	result, err := db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return storeError("delete project", err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Resource: "project", ID: strconv.FormatInt(projectID, 10)}
	}

	db.logger.Info("deleted project", zap.Int64("id", projectID))
	return nil
}

// Helper functions

func generateAPIKey() string {
	return fmt.Sprintf("dlog_%s", uuid.New().String())
}

func mappingOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.UUID,
		&project.Name,
		&project.APIKey,
		&project.ColumnMapping,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanProjects(rows rowsScanner) ([]models.Project, error) {
	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}
