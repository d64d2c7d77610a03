package review

import "context"

// Repository はレビューリポジトリのインターフェース
type Repository interface {
	// Create は新しいレビューを作成する。同じ予約のレビューが既にあれば ErrReviewAlreadyExists
	Create(ctx context.Context, review *Review) error

	// ExistsByReservation は予約にレビューが存在するかを返す
	ExistsByReservation(ctx context.Context, reservationID string) (bool, error)

	// ListByLodging は宿泊施設のレビュー一覧を新しい順に取得する
	ListByLodging(ctx context.Context, lodgingID string, limit, offset int) ([]*Review, error)
}
