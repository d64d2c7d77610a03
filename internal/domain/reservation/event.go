package reservation

import (
	"time"

	"github.com/google/uuid"
)

// EventType は予約ライフサイクルのイベント種別
type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventConfirmed EventType = "reservation.confirmed"
	EventCancelled EventType = "reservation.cancelled"
	EventCompleted EventType = "reservation.completed"
)

// Event は通知基盤へ送る予約イベント
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ReservationID string    `json:"reservation_id"`
	LodgingID     string    `json:"lodging_id"`
	GuestID       string    `json:"guest_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	GuestCount    int       `json:"guest_count"`
	TotalPrice    string    `json:"total_price"`
	Status        Status    `json:"status"`
	CancelReason  string    `json:"cancel_reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent は予約の現在の状態からイベントを作成する
func NewEvent(t EventType, r *Reservation, now time.Time) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          t,
		ReservationID: r.ID,
		LodgingID:     r.LodgingID,
		GuestID:       r.GuestID,
		CheckIn:       FormatDate(r.CheckIn),
		CheckOut:      FormatDate(r.CheckOut),
		GuestCount:    r.GuestCount,
		TotalPrice:    r.TotalPrice.StringFixed(2),
		Status:        r.Status,
		CancelReason:  r.CancelReason,
		OccurredAt:    now.UTC(),
	}
}
