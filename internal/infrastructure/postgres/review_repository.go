package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/review"
)

type reviewRow struct {
	ID            string    `db:"id"`
	ReservationID string    `db:"reservation_id"`
	LodgingID     string    `db:"lodging_id"`
	AuthorID      string    `db:"author_id"`
	Rating        int       `db:"rating"`
	Text          string    `db:"text"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *reviewRow) toEntity() *review.Review {
	return &review.Review{
		ID:            r.ID,
		ReservationID: r.ReservationID,
		LodgingID:     r.LodgingID,
		AuthorID:      r.AuthorID,
		Rating:        r.Rating,
		Text:          r.Text,
		CreatedAt:     r.CreatedAt,
	}
}

// ReviewRepository はレビューリポジトリのPostgreSQL実装
type ReviewRepository struct{ db *sqlx.DB }

// NewReviewRepository はReviewRepositoryを作成する
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create はレビューを挿入する。予約ごとの一意制約違反は ErrReviewAlreadyExists になる
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	query := `
		INSERT INTO reviews (reservation_id, lodging_id, author_id, rating, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		rv.ReservationID, rv.LodgingID, rv.AuthorID, rv.Rating, rv.Text, rv.CreatedAt,
	).Scan(&rv.ID)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return review.ErrReviewAlreadyExists
		case codeForeignKeyViolation:
			return reservation.ErrReservationNotFound
		}
		return fmt.Errorf("レビュー作成に失敗: %w", err)
	}
	return nil
}

// ExistsByReservation は予約にレビューが存在するかを返す
func (r *ReviewRepository) ExistsByReservation(ctx context.Context, reservationID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE reservation_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, reservationID); err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("レビュー存在確認に失敗: %w", err)
	}
	return exists, nil
}

// ListByLodging は宿泊施設のレビューを新しい順に取得する
func (r *ReviewRepository) ListByLodging(ctx context.Context, lodgingID string, limit, offset int) ([]*review.Review, error) {
	var rows []reviewRow
	query := `
		SELECT id, reservation_id, lodging_id, author_id, rating, text, created_at
		FROM reviews WHERE lodging_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, lodgingID, limit, offset); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("レビュー一覧取得に失敗: %w", err)
	}

	reviews := make([]*review.Review, len(rows))
	for i := range rows {
		reviews[i] = rows[i].toEntity()
	}
	return reviews, nil
}

var _ review.Repository = (*ReviewRepository)(nil)
