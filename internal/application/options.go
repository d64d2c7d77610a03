package application

import (
	"time"

	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/metrics"
)

// Option はサービスの任意設定
type Option func(*options)

type options struct {
	now      func() time.Time
	metrics  *metrics.Metrics
	notifier Notifier
	policy   BookingPolicy
}

func newOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		policy: DefaultBookingPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock は現在時刻の取得元を差し替える
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics はメトリクスを設定する
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithNotifier は予約イベントの送信先を設定する
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithBookingPolicy は予約ポリシーを設定する
func WithBookingPolicy(p BookingPolicy) Option {
	return func(o *options) { o.policy = p }
}

// BookingPolicy は予約エンジンの動作設定
type BookingPolicy struct {
	// RequireHostApproval が true なら新規予約は承認待ちで作成される
	RequireHostApproval bool
	LockTTL             time.Duration
	LockRetries         int
	LockRetryDelay      time.Duration
	// SweepBatchSize は完了スイープで1回に読む予約数
	SweepBatchSize int
}

// DefaultBookingPolicy は既定の予約ポリシーを返す
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		LockTTL:        10 * time.Second,
		LockRetries:    3,
		LockRetryDelay: 100 * time.Millisecond,
		SweepBatchSize: 500,
	}
}
