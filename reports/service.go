package reports

import (
	"context"
	"devicelog/metrics"
	"devicelog/models"
	"devicelog/validation"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultErrorReportLimit = 1000
	defaultDayConcurrency   = 4
)

type Options struct {
	MaxPageSize      int
	MaxDays          int
	Location         *time.Location
	ConflictPolicy   ConflictPolicy
	ErrorReportLimit int
	DayConcurrency   int
}

func (o Options) withDefaults() Options {
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = validation.DefaultMaxPageSize
	}
	if o.MaxDays <= 0 {
		o.MaxDays = validation.DefaultMaxDays
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.ConflictPolicy == "" {
		o.ConflictPolicy = LastWriteWins
	}
	if o.ErrorReportLimit <= 0 {
		o.ErrorReportLimit = defaultErrorReportLimit
	}
	if o.DayConcurrency <= 0 {
		o.DayConcurrency = defaultDayConcurrency
	}
	return o
}

// Service exposes log queries and reports. It holds no mutable state; every
// call works on whatever snapshot the store returns.
type Service struct {
	logs     LogStore
	projects ProjectStore
	opts     Options
	logger   *zap.Logger
}

func NewService(logs LogStore, projects ProjectStore, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logs:     logs,
		projects: projects,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

func (s *Service) Options() Options {
	return s.opts
}

// ListLogs validates filter and returns the requested page along with the
// normalized pagination.
func (s *Service) ListLogs(ctx context.Context, filter models.LogFilter) (logs []models.LogEntry, page models.Pagination, err error) {
	defer s.observe("list_logs", time.Now(), &err)

	filter, err = validation.Filter(filter, s.opts.MaxPageSize)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	logs, total, err := s.logs.ListLogs(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return logs, models.Pagination{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
		HasMore:  int64(filter.Offset()+len(logs)) < total,
	}, nil
}

func (s *Service) GetLog(ctx context.Context, id int64) (*models.LogEntry, error) {
	return s.logs.GetLog(ctx, id)
}

// DeleteLog removes a single entry. A missing id is a NotFoundError.
func (s *Service) DeleteLog(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.logs.DeleteLog(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, &models.NotFoundError{Resource: "log", ID: strconv.FormatInt(id, 10)}
	}
	s.logger.Info("deleted log", zap.Int64("id", id))
	return true, nil
}

// DeviceReport tallies every entry of one device by data type. An unknown
// device yields zero counts.
func (s *Service) DeviceReport(ctx context.Context, deviceUUID string) (report *models.DeviceReport, err error) {
	defer s.observe("device", time.Now(), &err)

	deviceUUID = strings.TrimSpace(deviceUUID)
	if deviceUUID == "" {
		return nil, models.NewValidationError("deviceUuid is required")
	}

	counts, err := s.logs.CountByDataType(ctx, models.LogFilter{DeviceUUID: deviceUUID})
	if err != nil {
		return nil, err
	}

	return &models.DeviceReport{
		DeviceUUID: deviceUUID,
		TotalLogs:  counts.Total(),
		TypeCounts: counts,
	}, nil
}

// TimeRangeReport tallies entries with start <= created_at <= end and counts
// the distinct devices among them.
func (s *Service) TimeRangeReport(ctx context.Context, start, end time.Time) (report *models.TimeRangeReport, err error) {
	defer s.observe("time_range", time.Now(), &err)

	filter, err := validation.Filter(models.LogFilter{StartTime: &start, EndTime: &end}, s.opts.MaxPageSize)
	if err != nil {
		return nil, err
	}

	counts, err := s.logs.CountByDataType(ctx, filter)
	if err != nil {
		return nil, err
	}
	devices, err := s.logs.DistinctDeviceCount(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.TimeRangeReport{
		StartTime:   start,
		EndTime:     end,
		TotalLogs:   counts.Total(),
		TypeCounts:  counts,
		DeviceCount: devices,
	}, nil
}

// ErrorReport returns error entries in store order, capped at
// ErrorReportLimit. TotalErrors is always the uncapped count.
func (s *Service) ErrorReport(ctx context.Context) (report *models.ErrorReport, err error) {
	defer s.observe("errors", time.Now(), &err)

	entries, total, err := s.logs.ListLogs(ctx, models.LogFilter{
		DataType: models.DataTypeError,
		Page:     1,
		PageSize: s.opts.ErrorReportLimit,
	})
	if err != nil {
		return nil, err
	}

	return &models.ErrorReport{
		TotalErrors: total,
		Errors:      entries,
	}, nil
}

func (s *Service) observe(report string, start time.Time, errp *error) {
	metrics.ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())

	if errp == nil || *errp == nil {
		s.logger.Debug("report served",
			zap.String("report", report),
			zap.Duration("duration", time.Since(start)))
		return
	}

	err := *errp
	kind := models.ErrorKind(err)
	metrics.ReportFailures.WithLabelValues(report, kind).Inc()

	if kind == "validation_error" || kind == "not_found" {
		s.logger.Debug("report rejected", zap.String("report", report), zap.Error(err))
		return
	}
	s.logger.Error("report failed",
		zap.String("report", report),
		zap.String("kind", kind),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
}
