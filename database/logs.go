package database

import (
	"context"
	"devicelog/models"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// insertLockID keys the advisory lock that serializes ingest transactions.
const insertLockID int64 = 0x6465766c6f67

// InsertLogsBatch inserts log entries atomically using pgx batching.
// All logs are inserted in a single network round-trip; the server assigns
// id and created_at, which are returned on the stored copies.
// Batches take insertLockID for the length of their transaction and stamp
// rows with clock_timestamp(), so created_at never decreases as id grows.
// If any log fails, the whole batch is rolled back and the returned
// StoreError wraps a BatchInsertError indicating which log failed.
// Empty slice is a no-op.
func (db *DB) InsertLogsBatch(ctx context.Context, logs []models.LogEntry) ([]models.LogEntry, error) {
	if len(logs) == 0 {
		return []models.LogEntry{}, nil
	}

	start := time.Now()
	defer func() {
		db.logger.Debug("InsertLogsBatch",
			zap.Duration("duration", time.Since(start)),
			zap.Int("count", len(logs)))
	}()

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO logs (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, clock_timestamp())
		RETURNING %s, %s
	`, columnDeviceUUID, columnDataType, columnKey, columnValue, columnProjectID,
		columnSessionUUID, columnClientIP, columnClientTimestamp, columnCreatedAt,
		columnID, columnCreatedAt)

	batch := &pgx.Batch{}
	for _, entry := range logs {
		batch.Queue(query, entry.DeviceUUID, string(entry.DataType), entry.Key, valueText(entry.Value),
			entry.ProjectID, entry.SessionUUID, entry.ClientIP, entry.ClientTimestamp)
	}

	stored := make([]models.LogEntry, len(logs))
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", insertLockID); err != nil {
			return err
		}

		results := tx.SendBatch(ctx, batch)
		for i, entry := range logs {
			if err := results.QueryRow().Scan(&entry.ID, &entry.CreatedAt); err != nil {
				_ = results.Close()
				return &models.BatchInsertError{
					FailedIndex: i,
					TotalLogs:   len(logs),
					Err:         err,
				}
			}
			stored[i] = entry
		}
		return results.Close()
	})
	if err != nil {
		return nil, storeError("insert logs", err)
	}

	return stored, nil
}

// ListLogs retrieves one page of logs matching filter.
// Uses COUNT(*) OVER() window function to get total count in single query.
// Returns logs ordered by created_at ASC then id ASC, so consecutive pages
// partition the result set.
//
// Filters applied (all conjunctive):
//   - DeviceUUID, ProjectID, SessionUUID, Key, DataType: exact match
//   - StartTime/EndTime: inclusive created_at range
//   - EndBefore: exclusive created_at upper bound
//   - Page/PageSize: OFFSET (page-1)*pageSize LIMIT pageSize; PageSize <= 0 means no limit
//
// Returns empty slice (not nil) if no logs match.
func (db *DB) ListLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, int64, error) {
	start := time.Now()
	defer func() {
		db.logger.Debug("ListLogs",
			zap.Duration("duration", time.Since(start)),
			zap.String("device_uuid", filter.DeviceUUID),
			zap.String("data_type", string(filter.DataType)),
			zap.Int("page", filter.Page),
			zap.Int("page_size", filter.PageSize))
	}()

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	qb := NewQueryBuilder()
	qb.AddLogFilter(filter)

	// SAFETY: All user input is parameterized via $N placeholders.
	// WhereClause only contains column names and SQL operators.
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM logs
		%s
		ORDER BY %s ASC, %s ASC
	`, logColumns, qb.WhereClause(), columnCreatedAt, columnID)

	args := qb.Args()
	if filter.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", qb.NextArgNum(), qb.NextArgNum()+1)
		args = append(args, filter.PageSize, filter.Offset())
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storeError("list logs", err)
	}
	defer rows.Close()

	logs, total, err := scanLogs(rows, true)
	if err != nil {
		return nil, 0, storeError("list logs", err)
	}

	// A page past the end has no rows to carry the window count.
	if len(logs) == 0 && filter.Offset() > 0 {
		total, err = db.countLogs(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
	}

	return logs, total, nil
}

// ScanLogs returns every log matching filter, ordered by created_at then id.
// Pagination fields are ignored.
func (db *DB) ScanLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	start := time.Now()
	var count int
	defer func() {
		db.logger.Debug("ScanLogs",
			zap.Duration("duration", time.Since(start)),
			zap.Int("rows", count))
	}()

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	qb := NewQueryBuilder()
	qb.AddLogFilter(filter)

	query := fmt.Sprintf(`
		SELECT %s
		FROM logs
		%s
		ORDER BY %s ASC, %s ASC
	`, logColumns, qb.WhereClause(), columnCreatedAt, columnID)

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, storeError("scan logs", err)
	}
	defer rows.Close()

	logs, _, err := scanLogs(rows, false)
	if err != nil {
		return nil, storeError("scan logs", err)
	}
	count = len(logs)

	return logs, nil
}

func (db *DB) GetLog(ctx context.Context, id int64) (*models.LogEntry, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM logs WHERE %s = $1`, logColumns, columnID)

	entry, _, err := scanLog(db.Pool.QueryRow(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "log", ID: strconv.FormatInt(id, 10)}
		}
		return nil, storeError("get log", err)
	}

	return entry, nil
}

// DeleteLog removes a log by id and reports whether a row was deleted.
func (db *DB) DeleteLog(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	result, err := db.Pool.Exec(ctx, `DELETE FROM logs WHERE id = $1`, id)
	if err != nil {
		return false, storeError("delete log", err)
	}

	return result.RowsAffected() > 0, nil
}

// CountByDataType tallies matching logs per data type in a single grouped scan.
func (db *DB) CountByDataType(ctx context.Context, filter models.LogFilter) (models.TypeCounts, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	qb := NewQueryBuilder()
	qb.AddLogFilter(filter)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM logs
		%s
		GROUP BY %s
	`, columnDataType, qb.WhereClause(), columnDataType)

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return models.TypeCounts{}, storeError("count by data type", err)
	}
	defer rows.Close()

	var counts models.TypeCounts
	for rows.Next() {
		var dataType string
		var n int64
		if err := rows.Scan(&dataType, &n); err != nil {
			return models.TypeCounts{}, storeError("count by data type", err)
		}
		counts.Add(models.DataType(dataType), n)
	}
	if err := rows.Err(); err != nil {
		return models.TypeCounts{}, storeError("count by data type", err)
	}

	return counts, nil
}

func (db *DB) DistinctDeviceCount(ctx context.Context, filter models.LogFilter) (int64, error) {
	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	qb := NewQueryBuilder()
	qb.AddLogFilter(filter)

	query := fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM logs %s`, columnDeviceUUID, qb.WhereClause())

	var n int64
	if err := db.Pool.QueryRow(ctx, query, qb.Args()...).Scan(&n); err != nil {
		return 0, storeError("distinct device count", err)
	}
	return n, nil
}

func (db *DB) countLogs(ctx context.Context, filter models.LogFilter) (int64, error) {
	qb := NewQueryBuilder()
	qb.AddLogFilter(filter)

	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM logs %s`, qb.WhereClause())
	if err := db.Pool.QueryRow(ctx, query, qb.Args()...).Scan(&n); err != nil {
		return 0, storeError("count logs", err)
	}
	return n, nil
}

// Helper functions

func valueText(v json.RawMessage) *string {
	if len(v) == 0 {
		return nil
	}
	s := string(v)
	return &s
}

func scanLog(row rowScanner, withTotal bool) (*models.LogEntry, int64, error) {
	var entry models.LogEntry
	var dataType string
	var value *string
	var total int64

	dest := []interface{}{
		&entry.ID, &entry.DeviceUUID, &dataType, &entry.Key, &value,
		&entry.ProjectID, &entry.SessionUUID, &entry.ClientIP, &entry.ClientTimestamp, &entry.CreatedAt,
	}
	if withTotal {
		dest = append(dest, &total)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, 0, err
	}

	entry.DataType = models.DataType(dataType)
	if value != nil {
		entry.Value = json.RawMessage(*value)
	}

	return &entry, total, nil
}

func scanLogs(rows rowsScanner, withTotal bool) ([]models.LogEntry, int64, error) {
	logs := []models.LogEntry{}
	var total int64

	for rows.Next() {
		entry, t, err := scanLog(rows, withTotal)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan log: %w", err)
		}
		total = t
		logs = append(logs, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating logs: %w", err)
	}

	return logs, total, nil
}
