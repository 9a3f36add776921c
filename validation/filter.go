package validation

import (
	"devicelog/models"
	"strings"
	"time"
)

const (
	DefaultMaxPageSize = 100
	DefaultMaxDays     = 90
)

// ParseQuery converts raw GET /logs parameters into a LogFilter.
// Timestamps must be RFC3339. The result still has to pass Filter.
func ParseQuery(params models.QueryParams) (models.LogFilter, error) {
	filter := models.LogFilter{
		DeviceUUID:  strings.TrimSpace(params.DeviceUUID),
		ProjectID:   params.ProjectID,
		SessionUUID: strings.TrimSpace(params.SessionUUID),
		Key:         params.Key,
		DataType:    models.DataType(params.DataType),
		Page:        params.Page,
		PageSize:    params.PageSize,
	}

	if params.StartTime != "" {
		t, err := parseRFC3339(params.StartTime)
		if err != nil {
			return models.LogFilter{}, models.NewValidationError("invalid start_time (expected RFC3339)")
		}
		filter.StartTime = &t
	}
	if params.EndTime != "" {
		t, err := parseRFC3339(params.EndTime)
		if err != nil {
			return models.LogFilter{}, models.NewValidationError("invalid end_time (expected RFC3339)")
		}
		filter.EndTime = &t
	}

	return filter, nil
}

// Filter is the validation gate for log filters. It rejects an unknown
// dataType and an inverted time window, and normalizes pagination:
// page defaults to 1, pageSize defaults to maxPageSize and is clamped to
// [1, maxPageSize].
// The input is not modified.
func Filter(filter models.LogFilter, maxPageSize int) (models.LogFilter, error) {
	if filter.DataType != "" && !filter.DataType.Valid() {
		return models.LogFilter{}, models.NewValidationError("invalid dataType")
	}
	if filter.StartTime != nil && filter.EndTime != nil && filter.StartTime.After(*filter.EndTime) {
		return models.LogFilter{}, models.NewValidationError("start after end")
	}

	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	filter.Page = normalizePage(filter.Page)
	filter.PageSize = clampPageSize(filter.PageSize, maxPageSize)

	return filter, nil
}

// ParseTimeRange parses the bounds of a time-range report. Both bounds are
// required. Ordering is checked by Filter.
func ParseTimeRange(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, models.NewValidationError("start_time and end_time are required")
	}

	startTime, err := parseRFC3339(start)
	if err != nil {
		return time.Time{}, time.Time{}, models.NewValidationError("invalid start_time (expected RFC3339)")
	}
	endTime, err := parseRFC3339(end)
	if err != nil {
		return time.Time{}, time.Time{}, models.NewValidationError("invalid end_time (expected RFC3339)")
	}

	return startTime, endTime, nil
}

// DateRange validates calendar bounds for matrix reports. Dates are
// YYYY-MM-DD interpreted in loc; the span may cover at most maxDays days.
func DateRange(start, end string, loc *time.Location, maxDays int) (models.DateRange, error) {
	if start == "" || end == "" {
		return models.DateRange{}, models.NewValidationError("start_date and end_date are required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}

	startDate, err := time.ParseInLocation(models.DateLayout, start, loc)
	if err != nil {
		return models.DateRange{}, models.NewValidationError("invalid start_date (expected YYYY-MM-DD)")
	}
	endDate, err := time.ParseInLocation(models.DateLayout, end, loc)
	if err != nil {
		return models.DateRange{}, models.NewValidationError("invalid end_date (expected YYYY-MM-DD)")
	}

	if startDate.After(endDate) {
		return models.DateRange{}, models.NewValidationError("start after end")
	}

	// Inclusive count: start + maxDays is the first disallowed end date.
	limit := time.Date(startDate.Year(), startDate.Month(), startDate.Day()+maxDays, 0, 0, 0, 0, loc)
	if !endDate.Before(limit) {
		return models.DateRange{}, models.NewValidationError("date range exceeds %d days", maxDays)
	}

	return models.DateRange{Start: startDate, End: endDate}, nil
}

// Helper functions

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// clampPageSize treats an omitted (zero) page size as maxPageSize.
func clampPageSize(pageSize, maxPageSize int) int {
	if pageSize == 0 {
		return maxPageSize
	}
	if pageSize < 1 {
		return 1
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}
