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
	redisinfra "github.com/sanosuguru/go-lodging-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/apperror"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-lodging-reservation/internal/pkg/metrics"
)

// ReservationService は予約の作成と状態遷移を扱う
type ReservationService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	lodgingRepo     lodging.Repository
	catalog         lodging.Catalog
	availability    *AvailabilityChecker
	lockManager     redisinfra.LockManagerInterface
	notifier        Notifier
	metrics         *metrics.Metrics
	policy          BookingPolicy
	now             func() time.Time
}

// NewReservationService は ReservationService を作成する
// catalog が nil なら lodgingRepo から読む。lockManager が nil なら分散ロックを使わない
func NewReservationService(
	txm transaction.Manager,
	rr reservation.Repository,
	lr lodging.Repository,
	catalog lodging.Catalog,
	lm redisinfra.LockManagerInterface,
	opts ...Option,
) *ReservationService {
	o := newOptions(opts)
	if catalog == nil {
		catalog = lr
	}
	return &ReservationService{
		txManager:       txm,
		reservationRepo: rr,
		lodgingRepo:     lr,
		catalog:         catalog,
		availability:    &AvailabilityChecker{reservationRepo: rr, catalog: catalog, now: o.now},
		lockManager:     lm,
		notifier:        o.notifier,
		metrics:         o.metrics,
		policy:          o.policy,
		now:             o.now,
	}
}

// Availability は空き状況の判定器を返す
func (s *ReservationService) Availability() *AvailabilityChecker {
	return s.availability
}

// CreateReservationInput は予約作成の入力
type CreateReservationInput struct {
	GuestID    string
	LodgingID  string
	CheckIn    string
	CheckOut   string
	GuestCount int
	TotalPrice decimal.Decimal
}

// CreateReservation は予約リクエストを検証して予約を作成する
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	res, err := s.createReservation(ctx, input)
	s.metrics.ObserveReservation(reservationOutcome(err))
	if err != nil {
		return nil, err
	}

	logger.Reservation(res.ID, res.LodgingID).Info("予約を作成しました",
		zap.String("guest_id", res.GuestID),
		zap.String("stay", res.Stay().String()),
		zap.String("status", string(res.Status)),
	)
	publish(s.notifier, reservation.EventCreated, res, s.now())
	return res, nil
}

func (s *ReservationService) createReservation(ctx context.Context, input CreateReservationInput) (*reservation.Reservation, error) {
	now := s.now()

	// 1. 必須ID
	guestID := strings.TrimSpace(input.GuestID)
	if guestID == "" {
		return nil, reservation.ErrGuestIDRequired
	}
	lodgingID := strings.TrimSpace(input.LodgingID)
	if lodgingID == "" {
		return nil, reservation.ErrLodgingIDRequired
	}

	// 2-3. 日付
	stay, err := parseRequestedStay(now, input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}

	// 4. 宿泊施設
	l, err := s.catalog.GetByID(ctx, lodgingID)
	if err != nil {
		return nil, wrapInternal("宿泊施設の取得に失敗", err)
	}
	if !l.IsActive() {
		return nil, lodging.ErrLodgingUnavailable
	}

	// 5. 人数
	if input.GuestCount < 1 {
		return nil, reservation.ErrInvalidGuestCount
	}
	if !l.Fits(input.GuestCount) {
		return nil, fmt.Errorf("%w: %d guests requested, maximum is %d", reservation.ErrExceedsCapacity, input.GuestCount, l.MaxCapacity)
	}

	// 同じ宿泊施設への予約を直列化する
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.LodgingLockKey(lodgingID),
			s.policy.LockTTL, s.policy.LockRetries, s.policy.LockRetryDelay)
		switch {
		case errors.Is(err, redisinfra.ErrLockNotAcquired):
			return nil, reservation.ErrLodgingBusy
		case err != nil:
			// 行ロックと排他制約で整合性は保たれるため、Redis障害時はロックなしで続行する
			logger.Warn("分散ロックを取得できないため行ロックのみで続行します",
				zap.String("lodging_id", lodgingID), zap.Error(err))
		default:
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("分散ロックの解放に失敗しました", zap.String("lodging_id", lodgingID), zap.Error(err))
				}
			}()
		}
	}

	var created *reservation.Reservation
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		locked, err := s.lodgingRepo.GetForUpdate(ctx, tx, lodgingID)
		if err != nil {
			return wrapInternal("宿泊施設のロックに失敗", err)
		}
		// キャッシュが古い場合に備えてロック下で再確認する
		if !locked.IsActive() {
			return lodging.ErrLodgingUnavailable
		}

		// 6. 空き状況
		overlap, err := s.availability.HasOverlap(ctx, tx, lodgingID, stay)
		if err != nil {
			return err
		}
		if overlap {
			return fmt.Errorf("%w: %s", reservation.ErrDateConflict, stay)
		}

		// 7. 金額
		if !input.TotalPrice.IsPositive() {
			return reservation.ErrInvalidTotalPrice
		}

		var res *reservation.Reservation
		if s.policy.RequireHostApproval {
			res = reservation.NewPendingReservation(guestID, lodgingID, stay, input.GuestCount, input.TotalPrice, now)
		} else {
			res = reservation.NewReservation(guestID, lodgingID, stay, input.GuestCount, input.TotalPrice, now)
		}
		if err := res.Validate(); err != nil {
			return err
		}
		if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
			return wrapInternal("予約作成に失敗", err)
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetReservation はIDで予約を取得する
func (s *ReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	return s.reservationRepo.GetByID(ctx, id)
}

// GetGuestReservations はゲストの予約一覧を取得する
func (s *ReservationService) GetGuestReservations(ctx context.Context, guestID string, limit, offset int) ([]*reservation.Reservation, error) {
	if guestID == "" {
		return nil, reservation.ErrGuestIDRequired
	}
	limit, offset = normalizePage(limit, offset)
	return s.reservationRepo.GetByGuestID(ctx, guestID, limit, offset)
}

// ConfirmReservation はホストが承認待ちの予約を確定する
func (s *ReservationService) ConfirmReservation(ctx context.Context, id, hostID string) (*reservation.Reservation, error) {
	res, err := s.transition(ctx, id, func(tx transaction.Tx, r *reservation.Reservation, now time.Time) error {
		l, err := s.lodgingRepo.GetByID(ctx, r.LodgingID)
		if err != nil {
			return wrapInternal("宿泊施設の取得に失敗", err)
		}
		if !l.IsHostedBy(hostID) {
			return lodging.ErrNotLodgingHost
		}
		return r.Confirm(now)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(reservation.StatusConfirmed))
	publish(s.notifier, reservation.EventConfirmed, res, s.now())
	return res, nil
}

// CancelReservation は予約をキャンセルする
// チェックイン当日0時の48時間前を過ぎるとキャンセルできない
func (s *ReservationService) CancelReservation(ctx context.Context, id, reason string) (*reservation.Reservation, error) {
	res, err := s.transition(ctx, id, func(_ transaction.Tx, r *reservation.Reservation, now time.Time) error {
		return r.Cancel(reason, now)
	})
	if err != nil {
		return nil, err
	}
	logger.Reservation(res.ID, res.LodgingID).Info("予約をキャンセルしました", zap.String("reason", res.CancelReason))
	s.metrics.ObserveTransition(string(reservation.StatusCancelled))
	publish(s.notifier, reservation.EventCancelled, res, s.now())
	return res, nil
}

// CompleteReservation はチェックアウト日を迎えた予約を完了にする
func (s *ReservationService) CompleteReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	res, err := s.transition(ctx, id, func(_ transaction.Tx, r *reservation.Reservation, now time.Time) error {
		return r.Complete(now)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveTransition(string(reservation.StatusCompleted))
	publish(s.notifier, reservation.EventCompleted, res, s.now())
	return res, nil
}

// CompleteElapsedReservations はチェックアウト日を過ぎた確定済み予約をまとめて完了にする
// 個々の予約の失敗はログに残して続行し、完了にした件数を返す
func (s *ReservationService) CompleteElapsedReservations(ctx context.Context) (int, error) {
	now := s.now()
	batchSize := s.policy.SweepBatchSize
	if batchSize <= 0 {
		batchSize = DefaultBookingPolicy().SweepBatchSize
	}

	completed := 0
	for {
		candidates, err := s.reservationRepo.FindCompletable(ctx, now, batchSize)
		if err != nil {
			return completed, fmt.Errorf("完了対象の予約取得に失敗: %w", err)
		}

		progressed := 0
		for _, c := range candidates {
			if c.Status != reservation.StatusConfirmed {
				continue
			}
			if _, err := s.CompleteReservation(ctx, c.ID); err != nil {
				if apperror.Is(err, apperror.KindState) {
					continue
				}
				logger.Reservation(c.ID, c.LodgingID).Error("予約の完了に失敗しました", zap.Error(err))
				continue
			}
			progressed++
		}
		completed += progressed

		// 全件失敗したバッチを読み直し続けないよう、進捗がなければ終える
		if len(candidates) < batchSize || progressed == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return completed, err
		}
	}

	s.metrics.ObserveSweep(completed)
	return completed, nil
}

// transition は予約を行ロック下で読み、apply で遷移させて保存する
func (s *ReservationService) transition(
	ctx context.Context,
	id string,
	apply func(tx transaction.Tx, r *reservation.Reservation, now time.Time) error,
) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		r, err := s.reservationRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return wrapInternal("予約取得に失敗", err)
		}
		if err := apply(tx, r, s.now()); err != nil {
			return err
		}
		if err := s.reservationRepo.Update(ctx, tx, r); err != nil {
			return wrapInternal("予約更新に失敗", err)
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// reservationOutcome は予約作成の結果をメトリクスのラベルにする
func reservationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, reservation.ErrLodgingBusy):
		return "lock_failed"
	}
	switch apperror.KindOf(err) {
	case apperror.KindConflict:
		return "conflict"
	case apperror.KindValidation, apperror.KindNotFound:
		return "invalid"
	default:
		return "error"
	}
}

// wrapInternal はドメインエラーはそのまま返し、それ以外に文脈を付ける
func wrapInternal(msg string, err error) error {
	if apperror.KindOf(err) != apperror.KindInternal {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// normalizePage はページングの値を補正する
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
