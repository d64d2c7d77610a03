package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/review"
)

// ReviewService は宿泊後のレビューを扱う
type ReviewService struct {
	reservationRepo reservation.Repository
	reviewRepo      review.Repository
	now             func() time.Time
}

// NewReviewService は ReviewService を作成する
func NewReviewService(rr reservation.Repository, rvr review.Repository, opts ...Option) *ReviewService {
	o := newOptions(opts)
	return &ReviewService{reservationRepo: rr, reviewRepo: rvr, now: o.now}
}

// CreateReviewInput はレビュー作成の入力
type CreateReviewInput struct {
	ReservationID string
	AuthorID      string
	Rating        int
	Text          string
}

// CreateReview は完了済みの予約にレビューを1件だけ作成する
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*review.Review, error) {
	res, err := s.reservationRepo.GetByID(ctx, input.ReservationID)
	if err != nil {
		return nil, wrapInternal("予約取得に失敗", err)
	}

	now := s.now()
	if res.Status != reservation.StatusCompleted {
		return nil, review.ErrReservationNotCompleted
	}
	// チェックアウト当日に完了にされた予約はまだレビューできない
	if !res.CheckOut.Before(reservation.DateOf(now)) {
		return nil, review.ErrStayNotOver
	}

	exists, err := s.reviewRepo.ExistsByReservation(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("レビュー存在確認に失敗: %w", err)
	}
	if exists {
		return nil, review.ErrReviewAlreadyExists
	}

	rv := review.NewReview(res.ID, res.LodgingID, input.AuthorID, input.Rating, input.Text, now)
	if err := rv.ValidateContent(); err != nil {
		return nil, err
	}
	if input.AuthorID == "" || input.AuthorID != res.GuestID {
		return nil, review.ErrNotReservationGuest
	}

	// 同時リクエストは一意制約で ErrReviewAlreadyExists になる
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		return nil, wrapInternal("レビュー作成に失敗", err)
	}
	return rv, nil
}

// ListLodgingReviews は宿泊施設のレビューを新しい順に取得する
func (s *ReviewService) ListLodgingReviews(ctx context.Context, lodgingID string, limit, offset int) ([]*review.Review, error) {
	limit, offset = normalizePage(limit, offset)
	return s.reviewRepo.ListByLodging(ctx, lodgingID, limit, offset)
}
