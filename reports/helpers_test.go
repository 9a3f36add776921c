package reports

import (
	"context"
	"devicelog/memstore"
	"devicelog/models"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var day1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func entryAt(device, session string, dataType models.DataType, key, value string, at time.Time) models.LogEntry {
	e := models.LogEntry{
		DeviceUUID: device,
		DataType:   dataType,
		Key:        key,
		CreatedAt:  at,
	}
	if session != "" {
		e.SessionUUID = strPtr(session)
	}
	if value != "" {
		e.Value = json.RawMessage(value)
	}
	return e
}

func inProject(projectID int64, entries ...models.LogEntry) []models.LogEntry {
	for i := range entries {
		entries[i].ProjectID = &projectID
	}
	return entries
}

// countingStore records how often the engine reaches the store.
type countingStore struct {
	*memstore.Store
	calls atomic.Int64
}

func (s *countingStore) ListLogs(ctx context.Context, f models.LogFilter) ([]models.LogEntry, int64, error) {
	s.calls.Add(1)
	return s.Store.ListLogs(ctx, f)
}

func (s *countingStore) ScanLogs(ctx context.Context, f models.LogFilter) ([]models.LogEntry, error) {
	s.calls.Add(1)
	return s.Store.ScanLogs(ctx, f)
}

func (s *countingStore) CountByDataType(ctx context.Context, f models.LogFilter) (models.TypeCounts, error) {
	s.calls.Add(1)
	return s.Store.CountByDataType(ctx, f)
}

func (s *countingStore) DistinctDeviceCount(ctx context.Context, f models.LogFilter) (int64, error) {
	s.calls.Add(1)
	return s.Store.DistinctDeviceCount(ctx, f)
}

func (s *countingStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	s.calls.Add(1)
	return s.Store.GetProject(ctx, id)
}

func newTestService(t *testing.T, opts Options) (*Service, *countingStore) {
	t.Helper()
	store := &countingStore{Store: memstore.New()}
	return NewService(store, store, opts, zap.NewNop()), store
}

func createProject(t *testing.T, store *countingStore, mapping map[string]string) *models.Project {
	t.Helper()
	project, err := store.CreateProject(context.Background(), "test project", mapping)
	require.NoError(t, err)
	return project
}
