// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン結果のラベル値
const (
	LoginResultSuccess = "success"
	LoginResultFailure = "failure"
	LoginResultError   = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordLogin(result string)
	RecordTokenRejected(reason string)
	RecordPrincipalResolutionError()
	RecordRateLimited(limitType string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	login            *prometheus.CounterVec
	tokenRejected    *prometheus.CounterVec
	resolutionErrors prometheus.Counter
	rateLimited      *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yogastudio_login_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		tokenRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yogastudio_token_rejected_total",
			Help: "拒否されたBearerトークンの理由別合計数",
		}, []string{"reason"}),
		resolutionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yogastudio_principal_resolution_errors_total",
			Help: "ユーザーストア障害によるPrincipal解決失敗の合計数",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yogastudio_rate_limited_total",
			Help: "レート制限で拒否されたリクエスト数",
		}, []string{"limit_type"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yogastudio_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yogastudio_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.login,
		c.tokenRejected,
		c.resolutionErrors,
		c.rateLimited,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.login.WithLabelValues(result).Inc()
}

// RecordTokenRejected はトークン拒否を記録する。
func (c *Collector) RecordTokenRejected(reason string) {
	c.tokenRejected.WithLabelValues(reason).Inc()
}

// RecordPrincipalResolutionError はストア障害によるPrincipal解決失敗を記録する。
func (c *Collector) RecordPrincipalResolutionError() {
	c.resolutionErrors.Inc()
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(limitType string) {
	c.rateLimited.WithLabelValues(limitType).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
