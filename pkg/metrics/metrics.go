package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 报表构建延迟（秒）
	ReportBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_build_duration_seconds",
			Help:    "Report assembly duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"report"},
	)

	// 报表计数
	ReportCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_count",
			Help: "Total number of reports computed",
		},
		[]string{"report", "status"}, // status: success, failed
	)

	// 扫描过的时间条目计数
	EntriesScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "time_entries_scanned_total",
			Help: "Total number of time entries visited during aggregation",
		},
		[]string{"level"}, // level: task, subtask, nano
	)

	// 跳过的异常条目计数
	EntriesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "time_entries_skipped_total",
			Help: "Total number of malformed time entries skipped",
		},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
		[]string{"sql"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordReportBuild 记录报表构建延迟和结果
func RecordReportBuild(report, status string, duration time.Duration) {
	ReportBuildDuration.WithLabelValues(report).Observe(duration.Seconds())
	ReportCount.WithLabelValues(report, status).Inc()
}

// IncrementEntriesScanned 增加时间条目扫描计数
func IncrementEntriesScanned(level string, n int) {
	EntriesScanned.WithLabelValues(level).Add(float64(n))
}

// IncrementEntriesSkipped 增加跳过条目计数
func IncrementEntriesSkipped() {
	EntriesSkipped.Inc()
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}
