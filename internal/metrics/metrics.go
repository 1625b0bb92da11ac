// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordGenerateSuccess()
	RecordGenerateFailure()
	RecordUpstreamLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordHistoryOperation(op string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	generateSuccess prometheus.Counter
	generateFail    prometheus.Counter
	upstreamLatency prometheus.Histogram
	httpStatus      *prometheus.CounterVec
	historyOps      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		generateSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailgen_generate_success_total",
			Help: "メール生成成功の合計数",
		}),
		generateFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailgen_generate_fail_total",
			Help: "メール生成失敗の合計数",
		}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mailgen_upstream_latency_seconds",
			Help:    "補完API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailgen_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		historyOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mailgen_history_operations_total",
			Help: "履歴操作の種別ごとの合計数",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.generateSuccess,
		c.generateFail,
		c.upstreamLatency,
		c.httpStatus,
		c.historyOps,
	)

	return c
}

// RecordGenerateSuccess は生成成功を記録する。
func (c *Collector) RecordGenerateSuccess() {
	c.generateSuccess.Inc()
}

// RecordGenerateFailure は生成失敗を記録する。
func (c *Collector) RecordGenerateFailure() {
	c.generateFail.Inc()
}

// RecordUpstreamLatency は補完API呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHistoryOperation は履歴操作（add, list, delete, export）を記録する。
func (c *Collector) RecordHistoryOperation(op string) {
	c.historyOps.WithLabelValues(op).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
