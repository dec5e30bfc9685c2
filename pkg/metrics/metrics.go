// Package metrics はリレーサービスのPrometheusメトリクスを提供する。
//
// メトリクスはプロセスごとの専用レジストリに登録され、/metrics から公開される。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// デプロイ転送の結果区分。
const (
	// OutcomeOK はデプロイサービスとのHTTP交換が完了したことを示す。
	OutcomeOK = "ok"
	// OutcomeError はデプロイサービスとの通信に失敗したことを示す。
	OutcomeError = "error"
	// OutcomeInvalid は入力検証で転送前に打ち切ったことを示す。
	OutcomeInvalid = "invalid"
)

// unmatchedRoute はルーティングに一致しなかったリクエストのラベル値。
const unmatchedRoute = "unmatched"

// Recorder はメトリクスの記録と公開を行う。
type Recorder struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	deployRequests *prometheus.CounterVec
	deployDuration prometheus.Histogram
}

// namespace はメトリクス名の接頭辞。
const namespace = "mintrelay"

// buckets はヒストグラムのバケット境界（秒）。
// デプロイは数十秒かかることがあるため上限を広めに取る。
var buckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90}

// New は専用レジストリを持つRecorderを生成する。
func New() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   buckets,
		}, []string{"route", "method"}),
		deployRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deploy_requests_total",
			Help:      "Total number of collection creation requests by outcome.",
		}, []string{"outcome"}),
		deployDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deploy_duration_seconds",
			Help:      "Round trip time of calls to the deploy service in seconds.",
			Buckets:   buckets,
		}),
	}
}

// ObserveHTTP はHTTPリクエスト1件を記録する。
// routeが空の場合はルーティング不一致として扱う。
func (r *Recorder) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = unmatchedRoute
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// CountDeploy はデプロイ転送の結果を1件記録する。
func (r *Recorder) CountDeploy(outcome string) {
	r.deployRequests.WithLabelValues(outcome).Inc()
}

// ObserveDeploy はデプロイサービスへの呼び出し1件の結果と所要時間を記録する。
func (r *Recorder) ObserveDeploy(outcome string, elapsed time.Duration) {
	r.CountDeploy(outcome)
	r.deployDuration.Observe(elapsed.Seconds())
}

// Registry は内部のPrometheusレジストリを返す。
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler はメトリクスを公開するHTTPハンドラを返す。
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
