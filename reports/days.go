package reports

import (
	"context"
	"devicelog/metrics"
	"devicelog/models"
	"devicelog/validation"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OrganizationMatrix builds the session x key matrix of a project over the
// inclusive calendar range [startDate, endDate].
func (s *Service) OrganizationMatrix(ctx context.Context, projectID int64, startDate, endDate string) (report *models.OrganizationMatrixReport, err error) {
	defer s.observe("matrix", time.Now(), &err)

	rng, project, entries, err := s.loadWindow(ctx, projectID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	r := s.buildReport(project, rng, entries)
	metrics.MatrixSessions.WithLabelValues("matrix").Observe(float64(r.TotalDevices))
	return &r, nil
}

// OrganizationMatrixByDays builds one matrix per calendar day that has at
// least one session, plus a combined matrix computed directly over the whole
// range. The combined matrix is not derived from the daily ones, so a session
// crossing midnight is counted once.
func (s *Service) OrganizationMatrixByDays(ctx context.Context, projectID int64, startDate, endDate string) (set *models.DailyReportSet, err error) {
	defer s.observe("matrix_daily", time.Now(), &err)

	rng, project, entries, err := s.loadWindow(ctx, projectID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	days := rng.Days()
	daily := make([]*models.OrganizationMatrixReport, len(days))
	var combined models.OrganizationMatrixReport

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.DayConcurrency)

	for i, day := range days {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dayRange := models.DateRange{Start: day, End: day}
			dayEntries := sliceWindow(entries, day, dayRange.Until())
			r := s.buildReport(project, dayRange, dayEntries)
			if r.TotalDevices > 0 {
				daily[i] = &r
			}
			return nil
		})
	}
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		combined = s.buildReport(project, rng, entries)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set = &models.DailyReportSet{
		DailyReports:   []models.OrganizationMatrixReport{},
		CombinedReport: combined,
	}
	for _, r := range daily {
		if r != nil {
			set.DailyReports = append(set.DailyReports, *r)
		}
	}

	metrics.MatrixSessions.WithLabelValues("matrix_daily").Observe(float64(combined.TotalDevices))
	s.logger.Debug("built daily matrix reports",
		zap.Int64("project_id", projectID),
		zap.Int("days", len(days)),
		zap.Int("days_with_sessions", len(set.DailyReports)),
		zap.Int("sessions", combined.TotalDevices))

	return set, nil
}

// loadWindow validates the request, resolves the project and fetches every
// session-tagged entry of the window in (CreatedAt, ID) order.
func (s *Service) loadWindow(ctx context.Context, projectID int64, startDate, endDate string) (models.DateRange, *models.Project, []models.LogEntry, error) {
	rng, err := validation.DateRange(startDate, endDate, s.opts.Location, s.opts.MaxDays)
	if err != nil {
		return models.DateRange{}, nil, nil, err
	}

	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return models.DateRange{}, nil, nil, err
	}
	if project == nil {
		return models.DateRange{}, nil, nil, &models.NotFoundError{Resource: "project", ID: strconv.FormatInt(projectID, 10)}
	}

	start, until := rng.Start, rng.Until()
	entries, err := s.logs.ScanLogs(ctx, models.LogFilter{
		ProjectID:   &project.ID,
		StartTime:   &start,
		EndBefore:   &until,
		WithSession: true,
	})
	if err != nil {
		return models.DateRange{}, nil, nil, err
	}
	SortEntries(entries)

	return rng, project, entries, nil
}

func (s *Service) buildReport(project *models.Project, rng models.DateRange, entries []models.LogEntry) models.OrganizationMatrixReport {
	sessions := GroupSessions(entries)
	matrix := BuildMatrix(entries, sessions, s.opts.ConflictPolicy)

	devices := make([]string, len(sessions))
	info := make(map[string]models.SessionInfo, len(sessions))
	for i, session := range sessions {
		devices[i] = session.UUID
		info[session.UUID] = models.SessionInfo{
			Index:      session.Index,
			StartTime:  session.StartTime,
			UUID:       session.UUID,
			DeviceUUID: session.DeviceUUID,
		}
	}

	return models.OrganizationMatrixReport{
		ProjectID:    project.ID,
		StartDate:    rng.Start.Format(models.DateLayout),
		EndDate:      rng.End.Format(models.DateLayout),
		Devices:      devices,
		Keys:         matrix.Keys,
		ColumnLabels: ColumnLabels(matrix.Keys, project),
		SessionInfo:  info,
		Matrix:       matrix.Cells,
		TotalDevices: len(sessions),
		TotalKeys:    len(matrix.Keys),
		TotalEntries: matrix.TotalEntries,
	}
}

// sliceWindow returns the entries with start <= CreatedAt < until. entries
// must be ordered by CreatedAt; the result shares the backing array.
func sliceWindow(entries []models.LogEntry, start, until time.Time) []models.LogEntry {
	lo := sort.Search(len(entries), func(i int) bool {
		return !entries[i].CreatedAt.Before(start)
	})
	hi := sort.Search(len(entries), func(i int) bool {
		return !entries[i].CreatedAt.Before(until)
	})
	return entries[lo:hi]
}
