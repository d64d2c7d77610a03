package reservation

import (
	"context"
	"time"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetForUpdate は行ロックを取って予約を取得する（トランザクション必須）
	GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Reservation, error)

	// GetByGuestID はゲストIDから予約一覧を取得する
	GetByGuestID(ctx context.Context, guestID string, limit, offset int) ([]*Reservation, error)

	// FindByLodging は宿泊施設の全予約を取得する
	FindByLodging(ctx context.Context, lodgingID string) ([]*Reservation, error)

	// FindBlockingByLodging は宿泊施設の承認待ち・確定済み予約を取得する
	// tx が nil の場合はトランザクション外で読む
	FindBlockingByLodging(ctx context.Context, tx transaction.Tx, lodgingID string) ([]*Reservation, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, reservation *Reservation) error

	// FindCompletable はチェックアウト日が指定日以前の確定済み予約を取得する
	FindCompletable(ctx context.Context, today time.Time, limit int) ([]*Reservation, error)
}
