package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の試行数（status: success, invalid, conflict, lock_failed, error）
	ReservationsTotal *prometheus.CounterVec

	// 予約の状態遷移数（to: confirmed, cancelled, completed）
	ReservationTransitionsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 完了スイープで完了にした予約数
	CompletionSweepCompleted prometheus.Counter

	// 宿泊施設の退役試行数（status: retired, blocked, error）
	LodgingRetirementsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation attempts by outcome",
			},
			[]string{"status"},
		),
		ReservationTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_transitions_total",
				Help: "Total number of reservation state transitions",
			},
			[]string{"to"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		CompletionSweepCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "completion_sweep_completed_total",
				Help: "Total number of reservations completed by the periodic sweep",
			},
		),
		LodgingRetirementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lodging_retirements_total",
				Help: "Total number of lodging retirement attempts by outcome",
			},
			[]string{"status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.ReservationTransitionsTotal,
		m.DistributedLockDuration,
		m.CompletionSweepCompleted,
		m.LodgingRetirementsTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}

// 以下のヘルパーは m が nil でも安全に呼べる（メトリクス未設定のテスト・ワーカー用）

// ObserveReservation は予約作成の結果を記録する
func (m *Metrics) ObserveReservation(status string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
}

// ObserveTransition は予約の状態遷移を記録する
func (m *Metrics) ObserveTransition(to string) {
	if m == nil {
		return
	}
	m.ReservationTransitionsTotal.WithLabelValues(to).Inc()
}

// ObserveLock は分散ロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(seconds)
}

// ObserveSweep は完了スイープで完了にした件数を記録する
func (m *Metrics) ObserveSweep(completed int) {
	if m == nil {
		return
	}
	m.CompletionSweepCompleted.Add(float64(completed))
}

// ObserveRetirement は退役試行の結果を記録する
func (m *Metrics) ObserveRetirement(status string) {
	if m == nil {
		return
	}
	m.LodgingRetirementsTotal.WithLabelValues(status).Inc()
}
