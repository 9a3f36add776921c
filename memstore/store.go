package memstore

import (
	"context"
	"devicelog/models"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps logs and projects in memory. It satisfies the same contract as
// the Postgres store and is used for tests and local runs without a database.
type Store struct {
	mu          sync.RWMutex
	logs        []models.LogEntry // ordered by (CreatedAt, ID)
	indexByID   map[int64]int
	projects    map[int64]*models.Project
	nextLogID   int64
	nextProject int64
	lastCreated time.Time
	now         func() time.Time
}

// New creates an empty store stamping entries with the wall clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty store using now to assign created_at.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		indexByID: make(map[int64]int),
		projects:  make(map[int64]*models.Project),
		now:       now,
	}
}

// InsertLogsBatch assigns ids and created_at to logs and stores them.
// created_at never decreases with id, even if the clock steps back.
func (s *Store) InsertLogsBatch(ctx context.Context, logs []models.LogEntry) ([]models.LogEntry, error) {
	if len(logs) == 0 {
		return []models.LogEntry{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, entry := range logs {
		if entry.ProjectID != nil {
			if _, ok := s.projects[*entry.ProjectID]; !ok {
				return nil, &models.StoreError{
					Op: "insert logs",
					Err: &models.BatchInsertError{
						FailedIndex: i,
						TotalLogs:   len(logs),
						Err:         fmt.Errorf("project %d does not exist", *entry.ProjectID),
					},
				}
			}
		}
	}

	now := s.now()
	if now.Before(s.lastCreated) {
		now = s.lastCreated
	}
	s.lastCreated = now

	stored := make([]models.LogEntry, len(logs))
	for i, entry := range logs {
		s.nextLogID++
		entry.ID = s.nextLogID
		entry.CreatedAt = now
		s.indexByID[entry.ID] = len(s.logs)
		s.logs = append(s.logs, entry)
		stored[i] = entry
	}

	return stored, nil
}

// Insert stores entries with caller-provided CreatedAt values. IDs are
// assigned in slice order. Intended for seeding fixtures.
func (s *Store) Insert(entries ...models.LogEntry) []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.LogEntry, len(entries))
	for i, entry := range entries {
		s.nextLogID++
		entry.ID = s.nextLogID
		s.logs = append(s.logs, entry)
		out[i] = entry
		if entry.CreatedAt.After(s.lastCreated) {
			s.lastCreated = entry.CreatedAt
		}
	}
	s.reindex()
	return out
}

func (s *Store) ListLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, &models.StoreError{Op: "list logs", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(filter)
	total := int64(len(matched))

	if filter.PageSize > 0 {
		offset := filter.Offset()
		if offset >= len(matched) {
			return []models.LogEntry{}, total, nil
		}
		end := offset + filter.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}

	return matched, total, nil
}

func (s *Store) ScanLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	filter.Page, filter.PageSize = 0, 0
	logs, _, err := s.ListLogs(ctx, filter)
	return logs, err
}

func (s *Store) GetLog(ctx context.Context, id int64) (*models.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexByID[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "log", ID: strconv.FormatInt(id, 10)}
	}
	entry := s.logs[idx]
	return &entry, nil
}

func (s *Store) DeleteLog(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexByID[id]
	if !ok {
		return false, nil
	}
	s.logs = append(s.logs[:idx], s.logs[idx+1:]...)
	s.reindex()
	return true, nil
}

func (s *Store) CountByDataType(ctx context.Context, filter models.LogFilter) (models.TypeCounts, error) {
	if err := ctx.Err(); err != nil {
		return models.TypeCounts{}, &models.StoreError{Op: "count by data type", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts models.TypeCounts
	for _, entry := range s.match(filter) {
		counts.Add(entry.DataType, 1)
	}
	return counts, nil
}

func (s *Store) DistinctDeviceCount(ctx context.Context, filter models.LogFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &models.StoreError{Op: "distinct device count", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make(map[string]struct{})
	for _, entry := range s.match(filter) {
		devices[entry.DeviceUUID] = struct{}{}
	}
	return int64(len(devices)), nil
}

// match returns a copy of the logs accepted by filter, in store order.
// Callers must hold s.mu.
func (s *Store) match(filter models.LogFilter) []models.LogEntry {
	result := []models.LogEntry{}
	for _, entry := range s.logs {
		if matches(entry, filter) {
			result = append(result, entry)
		}
	}
	return result
}

func matches(entry models.LogEntry, f models.LogFilter) bool {
	if f.DeviceUUID != "" && entry.DeviceUUID != f.DeviceUUID {
		return false
	}
	if f.ProjectID != nil && (entry.ProjectID == nil || *entry.ProjectID != *f.ProjectID) {
		return false
	}
	if f.SessionUUID != "" && (entry.SessionUUID == nil || *entry.SessionUUID != f.SessionUUID) {
		return false
	}
	if f.WithSession && (entry.SessionUUID == nil || *entry.SessionUUID == "") {
		return false
	}
	if f.Key != "" && entry.Key != f.Key {
		return false
	}
	if f.DataType != "" && entry.DataType != f.DataType {
		return false
	}
	if f.StartTime != nil && entry.CreatedAt.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && entry.CreatedAt.After(*f.EndTime) {
		return false
	}
	if f.EndBefore != nil && !entry.CreatedAt.Before(*f.EndBefore) {
		return false
	}
	return true
}

// reindex restores (CreatedAt, ID) order and the id index.
// Callers must hold s.mu.
func (s *Store) reindex() {
	sort.SliceStable(s.logs, func(i, j int) bool {
		return s.logs[i].Before(s.logs[j])
	})
	s.indexByID = make(map[int64]int, len(s.logs))
	for idx, entry := range s.logs {
		s.indexByID[entry.ID] = idx
	}
}

// Projects

func (s *Store) CreateProject(ctx context.Context, name string, columnMapping map[string]string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProject++
	now := s.now()
	project := &models.Project{
		ID:            s.nextProject,
		UUID:          uuid.New(),
		Name:          name,
		APIKey:        generateAPIKey(),
		ColumnMapping: copyMapping(columnMapping),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.projects[project.ID] = project

	return cloneProject(project), nil
}

func (s *Store) GetProject(ctx context.Context, projectID int64) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[projectID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "project", ID: strconv.FormatInt(projectID, 10)}
	}
	return cloneProject(project), nil
}

func (s *Store) GetProjectByAPIKey(ctx context.Context, apiKey string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, project := range s.projects {
		if project.APIKey == apiKey {
			return cloneProject(project), nil
		}
	}
	return nil, fmt.Errorf("invalid API key")
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]models.Project, 0, len(s.projects))
	for _, project := range s.projects {
		projects = append(projects, *cloneProject(project))
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ID > projects[j].ID
	})
	return projects, nil
}

func (s *Store) UpdateColumnMapping(ctx context.Context, projectID int64, columnMapping map[string]string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[projectID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "project", ID: strconv.FormatInt(projectID, 10)}
	}
	project.ColumnMapping = copyMapping(columnMapping)
	project.UpdatedAt = s.now()

	return cloneProject(project), nil
}

// DeleteProject removes the project and its logs.
func (s *Store) DeleteProject(ctx context.Context, projectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return &models.NotFoundError{Resource: "project", ID: strconv.FormatInt(projectID, 10)}
	}
	delete(s.projects, projectID)

	kept := s.logs[:0]
	for _, entry := range s.logs {
		if entry.ProjectID == nil || *entry.ProjectID != projectID {
			kept = append(kept, entry)
		}
	}
	s.logs = kept
	s.reindex()
	return nil
}

func (s *Store) Close() {}

func generateAPIKey() string {
	return fmt.Sprintf("dlog_%s", uuid.New().String())
}

// cloneProject returns a copy that shares no maps with the stored project.
func cloneProject(p *models.Project) *models.Project {
	out := *p
	out.ColumnMapping = copyMapping(p.ColumnMapping)
	return &out
}

func copyMapping(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
