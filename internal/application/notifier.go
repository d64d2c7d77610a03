package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/logger"
)

// notifyTimeout はイベント1件の送信に許す時間
const notifyTimeout = 5 * time.Second

// Notifier は予約イベントの送信先
// メール等の配信は送信先の責務で、予約処理は結果を待たない
type Notifier interface {
	Notify(ctx context.Context, event reservation.Event) error
}

// LogNotifier はイベントをログに出力するだけの Notifier
type LogNotifier struct{}

// Notify はイベントをログに出力する
func (LogNotifier) Notify(_ context.Context, event reservation.Event) error {
	logger.Info("予約イベント",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("reservation_id", event.ReservationID),
		zap.String("lodging_id", event.LodgingID),
		zap.String("status", string(event.Status)),
	)
	return nil
}

// publish は予約イベントを非同期に送信する。失敗はログに残すだけ
func publish(n Notifier, t reservation.EventType, r *reservation.Reservation, now time.Time) {
	if n == nil {
		return
	}
	event := reservation.NewEvent(t, r, now)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.Notify(ctx, event); err != nil {
			logger.Reservation(r.ID, r.LodgingID).Warn("予約イベントの送信に失敗しました",
				zap.String("type", string(t)),
				zap.Error(err),
			)
		}
	}()
}
