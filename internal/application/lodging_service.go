package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/metrics"
)

// CatalogInvalidator は宿泊施設カタログのキャッシュを無効化する
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, lodgingID string) error
}

// LodgingService は宿泊施設の登録と退役を扱う
type LodgingService struct {
	txManager       transaction.Manager
	lodgingRepo     lodging.Repository
	reservationRepo reservation.Repository
	cache           CatalogInvalidator
	metrics         *metrics.Metrics
	now             func() time.Time
}

// NewLodgingService は LodgingService を作成する。cache は nil でもよい
func NewLodgingService(txm transaction.Manager, lr lodging.Repository, rr reservation.Repository, cache CatalogInvalidator, opts ...Option) *LodgingService {
	o := newOptions(opts)
	return &LodgingService{
		txManager:       txm,
		lodgingRepo:     lr,
		reservationRepo: rr,
		cache:           cache,
		metrics:         o.metrics,
		now:             o.now,
	}
}

// CreateLodgingInput は宿泊施設登録の入力
type CreateLodgingInput struct {
	HostID        string
	Name          string
	MaxCapacity   int
	PricePerNight decimal.Decimal
}

// CreateLodging は宿泊施設を公開状態で登録する
func (s *LodgingService) CreateLodging(ctx context.Context, input CreateLodgingInput) (*lodging.Lodging, error) {
	l := lodging.NewLodging(strings.TrimSpace(input.HostID), input.Name, input.MaxCapacity, input.PricePerNight, s.now())
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := s.lodgingRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("宿泊施設の登録に失敗しました: %w", err)
	}
	return l, nil
}

// GetLodging はIDで宿泊施設を取得する
func (s *LodgingService) GetLodging(ctx context.Context, id string) (*lodging.Lodging, error) {
	return s.lodgingRepo.GetByID(ctx, id)
}

// ListHostLodgings はホストの宿泊施設一覧を取得する
func (s *LodgingService) ListHostLodgings(ctx context.Context, hostID string, limit, offset int) ([]*lodging.Lodging, error) {
	if hostID == "" {
		return nil, lodging.ErrHostIDRequired
	}
	limit, offset = normalizePage(limit, offset)
	return s.lodgingRepo.ListByHost(ctx, hostID, limit, offset)
}

// Quote は宿泊期間の見積もり
type Quote struct {
	LodgingID     string
	Stay          reservation.Stay
	Nights        int
	PricePerNight decimal.Decimal
	Total         decimal.Decimal
}

// Quote は宿泊数と1泊料金から基本料金を見積もる
func (s *LodgingService) Quote(ctx context.Context, id, checkIn, checkOut string) (*Quote, error) {
	stay, err := parseRequestedStay(s.now(), checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	l, err := s.lodgingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, lodging.ErrLodgingUnavailable
	}
	nights := stay.Nights()
	return &Quote{
		LodgingID:     l.ID,
		Stay:          stay,
		Nights:        nights,
		PricePerNight: l.PricePerNight,
		Total:         l.Quote(nights),
	}, nil
}

// BlockingReservationCount は退役を妨げる予約の件数を返す
// 承認待ち・確定済みでチェックアウトが今日以降の予約を数える
func (s *LodgingService) BlockingReservationCount(ctx context.Context, id string) (int, error) {
	if _, err := s.lodgingRepo.GetByID(ctx, id); err != nil {
		return 0, err
	}
	all, err := s.reservationRepo.FindByLodging(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("宿泊施設の予約取得に失敗: %w", err)
	}
	return countBlocking(all, s.now()), nil
}

// CanDeactivateLodging は宿泊施設を退役できるかを返す
func (s *LodgingService) CanDeactivateLodging(ctx context.Context, id string) (bool, error) {
	n, err := s.BlockingReservationCount(ctx, id)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// RetireLodging は宿泊施設を退役させる
// 予約作成と同じ行ロックの下で判定するため、判定後に予約が割り込むことはない
func (s *LodgingService) RetireLodging(ctx context.Context, id, hostID string) (*lodging.Lodging, error) {
	var retired *lodging.Lodging
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		l, err := s.lodgingRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return wrapInternal("宿泊施設のロックに失敗", err)
		}
		if !l.IsHostedBy(hostID) {
			return lodging.ErrNotLodgingHost
		}
		if !l.IsActive() {
			return lodging.ErrLodgingAlreadyRetired
		}

		blocking, err := s.reservationRepo.FindBlockingByLodging(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("有効な予約の取得に失敗: %w", err)
		}
		now := s.now()
		if n := countBlocking(blocking, now); n > 0 {
			return fmt.Errorf("%w (%d blocking reservations)", lodging.ErrLodgingHasActiveReservations, n)
		}

		if err := l.Retire(now); err != nil {
			return err
		}
		if err := s.lodgingRepo.Update(ctx, tx, l); err != nil {
			return wrapInternal("宿泊施設の更新に失敗", err)
		}
		retired = l
		return nil
	})
	if err != nil {
		s.metrics.ObserveRetirement(retirementOutcome(err))
		return nil, err
	}
	s.metrics.ObserveRetirement("retired")

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			logger.Warn("宿泊施設キャッシュの無効化に失敗しました", zap.String("lodging_id", id), zap.Error(err))
		}
	}
	logger.Info("宿泊施設を退役させました", zap.String("lodging_id", id), zap.String("host_id", hostID))
	return retired, nil
}

func countBlocking(reservations []*reservation.Reservation, now time.Time) int {
	n := 0
	for _, r := range reservations {
		if r.BlocksRetirementOn(now) {
			n++
		}
	}
	return n
}

func retirementOutcome(err error) string {
	if errors.Is(err, lodging.ErrLodgingHasActiveReservations) {
		return "blocked"
	}
	return "error"
}
