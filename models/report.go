package models

import (
	"encoding/json"
	"time"
)

type TypeCounts struct {
	Record  int64 `json:"record"`
	Warning int64 `json:"warning"`
	Error   int64 `json:"error"`
}

func (c TypeCounts) Total() int64 {
	return c.Record + c.Warning + c.Error
}

// Add increments the counter for d. Unknown types are ignored.
func (c *TypeCounts) Add(d DataType, n int64) {
	switch d {
	case DataTypeRecord:
		c.Record += n
	case DataTypeWarning:
		c.Warning += n
	case DataTypeError:
		c.Error += n
	}
}

type DeviceReport struct {
	DeviceUUID string     `json:"device_uuid"`
	TotalLogs  int64      `json:"total_logs"`
	TypeCounts TypeCounts `json:"type_counts"`
}

type TimeRangeReport struct {
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	TotalLogs   int64      `json:"total_logs"`
	TypeCounts  TypeCounts `json:"type_counts"`
	DeviceCount int64      `json:"device_count"`
}

type ErrorReport struct {
	TotalErrors int64      `json:"total_errors"`
	Errors      []LogEntry `json:"errors"`
}

// Session is derived from the entries sharing a session uuid. It is recomputed
// on every report request and never persisted.
type Session struct {
	Index        int        `json:"index"`
	UUID         string     `json:"uuid"`
	DeviceUUID   string     `json:"device_uuid"`
	StartTime    time.Time  `json:"start_time"`
	FirstLogTime time.Time  `json:"first_log_time"`
	LastLogTime  time.Time  `json:"last_log_time"`
	LogCount     int64      `json:"log_count"`
	TypeCounts   TypeCounts `json:"type_counts"`
	MinEntryID   int64      `json:"-"`
}

type SessionInfo struct {
	Index      int       `json:"index"`
	StartTime  time.Time `json:"start_time"`
	UUID       string    `json:"uuid"`
	DeviceUUID string    `json:"device_uuid"`
}

// OrganizationMatrixReport pivots a project's sessions against the keys they
// logged. Devices holds session uuids in session index order.
type OrganizationMatrixReport struct {
	ProjectID    int64                                 `json:"project_id"`
	StartDate    string                                `json:"start_date"`
	EndDate      string                                `json:"end_date"`
	Devices      []string                              `json:"devices"`
	Keys         []string                              `json:"keys"`
	ColumnLabels []string                              `json:"column_labels"`
	SessionInfo  map[string]SessionInfo                `json:"session_info"`
	Matrix       map[string]map[string]json.RawMessage `json:"matrix"`
	TotalDevices int                                   `json:"total_devices"`
	TotalKeys    int                                   `json:"total_keys"`
	TotalEntries int                                   `json:"total_entries"`
}

type DailyReportSet struct {
	DailyReports   []OrganizationMatrixReport `json:"daily_reports"`
	CombinedReport OrganizationMatrixReport   `json:"combined_report"`
}

// DateRange is an inclusive span of calendar days. Start and End are midnight
// in the reporting location.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days enumerates every calendar day in the range, inclusive.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = NextDay(d) {
		days = append(days, d)
	}
	return days
}

// Until returns the exclusive upper bound of the range: midnight after End.
func (r DateRange) Until() time.Time {
	return NextDay(r.End)
}

// NextDay returns midnight of the calendar day after d in d's location.
// time.Date normalizes across DST transitions where Add(24h) would not.
func NextDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, d.Location())
}

const DateLayout = "2006-01-02"
