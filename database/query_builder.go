package database

import (
	"devicelog/models"
	"fmt"
	"strings"
	"time"
)

const (
	columnID              = "id"
	columnDeviceUUID      = "device_uuid"
	columnDataType        = "data_type"
	columnKey             = "key"
	columnValue           = "value"
	columnProjectID       = "project_id"
	columnSessionUUID     = "session_uuid"
	columnClientIP        = "client_ip"
	columnClientTimestamp = "client_timestamp"
	columnCreatedAt       = "created_at"
)

// logColumns is the select list shared by every log query, in scan order.
var logColumns = strings.Join([]string{
	columnID, columnDeviceUUID, columnDataType, columnKey, columnValue,
	columnProjectID, columnSessionUUID, columnClientIP, columnClientTimestamp, columnCreatedAt,
}, ", ")

// QueryBuilder helps build WHERE clauses safely
type QueryBuilder struct {
	conditions []string
	args       []interface{}
	argCount   int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		conditions: []string{},
		args:       []interface{}{},
		argCount:   1,
	}
}

func (qb *QueryBuilder) AddCondition(column string, value interface{}) {
	qb.addComparison(column, "=", value)
}

// AddTimeRange adds an inclusive [start, end] bound. Nil bounds are skipped.
func (qb *QueryBuilder) AddTimeRange(column string, start, end *time.Time) {
	if start != nil {
		qb.addComparison(column, ">=", *start)
	}
	if end != nil {
		qb.addComparison(column, "<=", *end)
	}
}

// AddBefore adds an exclusive upper bound.
func (qb *QueryBuilder) AddBefore(column string, until time.Time) {
	qb.addComparison(column, "<", until)
}

func (qb *QueryBuilder) AddNotBlank(column string) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s IS NOT NULL AND %s <> ''", column, column))
}

// AddLogFilter applies every constraint of a LogFilter. Pagination is left
// to the caller.
func (qb *QueryBuilder) AddLogFilter(filter models.LogFilter) {
	if filter.DeviceUUID != "" {
		qb.AddCondition(columnDeviceUUID, filter.DeviceUUID)
	}
	if filter.ProjectID != nil {
		qb.AddCondition(columnProjectID, *filter.ProjectID)
	}
	if filter.SessionUUID != "" {
		qb.AddCondition(columnSessionUUID, filter.SessionUUID)
	}
	if filter.WithSession {
		qb.AddNotBlank(columnSessionUUID)
	}
	if filter.Key != "" {
		qb.AddCondition(columnKey, filter.Key)
	}
	if filter.DataType != "" {
		qb.AddCondition(columnDataType, string(filter.DataType))
	}
	qb.AddTimeRange(columnCreatedAt, filter.StartTime, filter.EndTime)
	if filter.EndBefore != nil {
		qb.AddBefore(columnCreatedAt, *filter.EndBefore)
	}
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) Args() []interface{} {
	return qb.args
}

func (qb *QueryBuilder) NextArgNum() int {
	return qb.argCount
}

func (qb *QueryBuilder) addComparison(column, op string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s %s $%d", column, op, qb.argCount))
	qb.args = append(qb.args, value)
	qb.argCount++
}
