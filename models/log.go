package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type DataType string

const (
	DataTypeRecord  DataType = "record"
	DataTypeWarning DataType = "warning"
	DataTypeError   DataType = "error"
)

// DataTypes lists every valid DataType in reporting order.
var DataTypes = []DataType{DataTypeRecord, DataTypeWarning, DataTypeError}

func (d DataType) Valid() bool {
	switch d {
	case DataTypeRecord, DataTypeWarning, DataTypeError:
		return true
	}
	return false
}

// LogEntry is a single key/value data point emitted by a device.
// Entries are immutable once stored; CreatedAt is assigned by the store and is
// the only timestamp used for ordering and windowing.
type LogEntry struct {
	ID              int64           `json:"id"`
	DeviceUUID      string          `json:"device_uuid"`
	DataType        DataType        `json:"data_type"`
	Key             string          `json:"key"`
	Value           json.RawMessage `json:"value,omitempty"`
	ProjectID       *int64          `json:"project_id,omitempty"`
	SessionUUID     *string         `json:"session_uuid,omitempty"`
	ClientIP        *string         `json:"client_ip,omitempty"`
	ClientTimestamp *int64          `json:"client_timestamp,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// HasValue reports whether the entry carries a non-null payload.
func (e LogEntry) HasValue() bool {
	v := bytes.TrimSpace(e.Value)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// Before orders entries by (CreatedAt, ID).
func (e LogEntry) Before(other LogEntry) bool {
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.Before(other.CreatedAt)
	}
	return e.ID < other.ID
}

// LogFilter is the conjunctive filter accepted by the log store.
// Zero values mean "no constraint"; PageSize <= 0 disables pagination.
type LogFilter struct {
	DeviceUUID  string
	ProjectID   *int64
	SessionUUID string
	Key         string
	DataType    DataType
	StartTime   *time.Time // inclusive
	EndTime     *time.Time // inclusive
	EndBefore   *time.Time // exclusive, used for calendar-day windows
	WithSession bool       // only entries carrying a session uuid
	Page        int
	PageSize    int
}

// Offset returns the row offset for the filter's page.
func (f LogFilter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// QueryParams is the raw query string of GET /logs before validation.
type QueryParams struct {
	DeviceUUID  string `form:"device_uuid"`
	ProjectID   *int64 `form:"project_id"`
	SessionUUID string `form:"session_uuid"`
	Key         string `form:"key"`
	DataType    string `form:"data_type"`
	StartTime   string `form:"start_time"`
	EndTime     string `form:"end_time"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// IngestRequest is one element of the POST /logs payload.
type IngestRequest struct {
	DeviceUUID      string          `json:"device_uuid" binding:"required"`
	DataType        DataType        `json:"data_type" binding:"required,oneof=record warning error"`
	Key             string          `json:"key" binding:"required,min=1,max=255"`
	Value           json.RawMessage `json:"value"`
	SessionUUID     *string         `json:"session_uuid"`
	ClientTimestamp *int64          `json:"client_timestamp"`
}

type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasMore  bool  `json:"has_more"`
}

type LogsResponse struct {
	Logs        []LogEntry `json:"logs"`
	Pagination  Pagination `json:"pagination"`
	QueryTimeMs *int64     `json:"query_time_ms,omitempty"`
}
