package reservation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// BlockingStatuses は空き状況と宿泊施設の退役を妨げる状態
var BlockingStatuses = []Status{StatusPending, StatusConfirmed}

// IsBlocking は同じ宿泊施設の他の予約と重複できない状態かを返す
func (s Status) IsBlocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal はこれ以上遷移できない状態かを返す
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// MinCancellationLeadTime はチェックイン（当日0時）までに必要なキャンセル猶予
const MinCancellationLeadTime = 48 * time.Hour

// Reservation は予約エンティティを表す
type Reservation struct {
	ID           string
	GuestID      string
	LodgingID    string
	CheckIn      time.Time
	CheckOut     time.Time
	GuestCount   int
	TotalPrice   decimal.Decimal
	Status       Status
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewReservation は確定済みの予約を作成する
func NewReservation(guestID, lodgingID string, stay Stay, guestCount int, totalPrice decimal.Decimal, now time.Time) *Reservation {
	r := newReservation(guestID, lodgingID, stay, guestCount, totalPrice, now)
	r.Status = StatusConfirmed
	r.ConfirmedAt = &now
	return r
}

// NewPendingReservation はホストの承認待ちの予約を作成する
func NewPendingReservation(guestID, lodgingID string, stay Stay, guestCount int, totalPrice decimal.Decimal, now time.Time) *Reservation {
	r := newReservation(guestID, lodgingID, stay, guestCount, totalPrice, now)
	r.Status = StatusPending
	return r
}

func newReservation(guestID, lodgingID string, stay Stay, guestCount int, totalPrice decimal.Decimal, now time.Time) *Reservation {
	return &Reservation{
		GuestID:    guestID,
		LodgingID:  lodgingID,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		GuestCount: guestCount,
		TotalPrice: totalPrice.Round(2),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Stay は予約の宿泊期間を返す
func (r *Reservation) Stay() Stay {
	return Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// Nights は宿泊数を返す
func (r *Reservation) Nights() int {
	return r.Stay().Nights()
}

// BlocksRetirementOn は指定日時点で宿泊施設の退役を妨げるかを返す
// 承認待ち・確定済みで、チェックアウトが当日以降の予約が該当する
func (r *Reservation) BlocksRetirementOn(today time.Time) bool {
	return r.Status.IsBlocking() && !r.CheckOut.Before(DateOf(today))
}

// Confirm は承認待ちの予約を確定する
func (r *Reservation) Confirm(now time.Time) error {
	if r.Status != StatusPending {
		return ErrReservationNotPending
	}
	r.Status = StatusConfirmed
	r.ConfirmedAt = &now
	r.UpdatedAt = now
	return nil
}

// LeadTime はチェックイン当日0時までの残り時間を返す
func (r *Reservation) LeadTime(now time.Time) time.Duration {
	return DateOf(r.CheckIn).Sub(now)
}

// Cancel は予約をキャンセルする
func (r *Reservation) Cancel(reason string, now time.Time) error {
	switch r.Status {
	case StatusCancelled:
		return ErrReservationAlreadyCancelled
	case StatusCompleted:
		return ErrReservationAlreadyCompleted
	}
	if lead := r.LeadTime(now); lead < MinCancellationLeadTime {
		hours := int(math.Floor(lead.Hours()))
		if hours < 0 {
			hours = 0
		}
		return fmt.Errorf("%w (%d hours remaining)", ErrCancellationTooLate, hours)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrCancelReasonRequired
	}
	r.Status = StatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.UpdatedAt = now
	return nil
}

// Complete は宿泊が終わった予約を完了にする
func (r *Reservation) Complete(now time.Time) error {
	switch r.Status {
	case StatusCancelled:
		return ErrReservationAlreadyCancelled
	case StatusCompleted:
		return ErrReservationAlreadyCompleted
	case StatusPending:
		return ErrReservationNotConfirmed
	}
	if r.CheckOut.After(DateOf(now)) {
		return fmt.Errorf("%w: check-out is %s", ErrStayNotElapsed, FormatDate(r.CheckOut))
	}
	r.Status = StatusCompleted
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// Validate は予約の不変条件を検証する
func (r *Reservation) Validate() error {
	if r.GuestID == "" {
		return ErrGuestIDRequired
	}
	if r.LodgingID == "" {
		return ErrLodgingIDRequired
	}
	if !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidStayRange
	}
	if r.GuestCount < 1 {
		return ErrInvalidGuestCount
	}
	if !r.TotalPrice.IsPositive() {
		return ErrInvalidTotalPrice
	}
	return nil
}
