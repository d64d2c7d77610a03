package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
)

// AvailabilityChecker は宿泊期間が既存の予約と重なるかを判定する
type AvailabilityChecker struct {
	reservationRepo reservation.Repository
	catalog         lodging.Catalog
	now             func() time.Time
}

// NewAvailabilityChecker は AvailabilityChecker を作成する
func NewAvailabilityChecker(rr reservation.Repository, catalog lodging.Catalog, opts ...Option) *AvailabilityChecker {
	o := newOptions(opts)
	return &AvailabilityChecker{reservationRepo: rr, catalog: catalog, now: o.now}
}

// HasOverlap は承認待ち・確定済みの予約のいずれかが stay と重なるかを返す
// tx を渡すと同じトランザクション内で読む
func (c *AvailabilityChecker) HasOverlap(ctx context.Context, tx transaction.Tx, lodgingID string, stay reservation.Stay) (bool, error) {
	blocking, err := c.reservationRepo.FindBlockingByLodging(ctx, tx, lodgingID)
	if err != nil {
		return false, fmt.Errorf("予約状況の取得に失敗: %w", err)
	}
	for _, r := range blocking {
		if r.Status.IsBlocking() && r.Stay().Overlaps(stay) {
			return true, nil
		}
	}
	return false, nil
}

// Availability は空き状況の照会結果
type Availability struct {
	LodgingID string
	Stay      reservation.Stay
	Available bool
}

// CheckAvailability は宿泊施設の指定期間の空き状況を返す
// 退役済みの宿泊施設は常に空きなしとする
func (c *AvailabilityChecker) CheckAvailability(ctx context.Context, lodgingID, checkIn, checkOut string) (*Availability, error) {
	if lodgingID == "" {
		return nil, reservation.ErrLodgingIDRequired
	}
	stay, err := parseRequestedStay(c.now(), checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	l, err := c.catalog.GetByID(ctx, lodgingID)
	if err != nil {
		return nil, err
	}

	result := &Availability{LodgingID: l.ID, Stay: stay}
	if !l.IsActive() {
		return result, nil
	}
	overlap, err := c.HasOverlap(ctx, nil, l.ID, stay)
	if err != nil {
		return nil, err
	}
	result.Available = !overlap
	return result, nil
}

// parseRequestedStay は予約リクエストの日付を検証して宿泊期間にする
// チェックインは今日以降、チェックアウトはチェックインより後でなければならない
func parseRequestedStay(now time.Time, checkIn, checkOut string) (reservation.Stay, error) {
	in, err := reservation.ParseDate(checkIn)
	if err != nil {
		return reservation.Stay{}, err
	}
	if in.Before(reservation.DateOf(now)) {
		return reservation.Stay{}, reservation.ErrCheckInInPast
	}
	out, err := reservation.ParseDate(checkOut)
	if err != nil {
		return reservation.Stay{}, err
	}
	return reservation.NewStay(in, out)
}
