package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devicelog_report_duration_seconds",
			Help:    "Report computation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"report"},
	)

	ReportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devicelog_report_failures_total",
			Help: "Total number of failed report requests by error kind",
		},
		[]string{"report", "kind"},
	)

	LogsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devicelog_logs_ingested_total",
			Help: "Total number of ingested log entries by data type",
		},
		[]string{"data_type"},
	)

	MatrixSessions = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devicelog_matrix_sessions",
			Help:    "Number of sessions in computed matrix reports",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"report"},
	)
)
