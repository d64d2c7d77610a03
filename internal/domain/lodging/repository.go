package lodging

import (
	"context"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
)

// Catalog は予約エンジンから見た読み取り専用の宿泊施設カタログ
type Catalog interface {
	// GetByID はIDから宿泊施設を取得する
	GetByID(ctx context.Context, id string) (*Lodging, error)
}

// Repository は宿泊施設リポジトリのインターフェース
type Repository interface {
	Catalog

	// Create は新しい宿泊施設を作成する
	Create(ctx context.Context, lodging *Lodging) error

	// GetForUpdate は行ロックを取って宿泊施設を取得する（トランザクション必須）
	// 同じ宿泊施設に対する予約作成と退役はこのロックで直列化される
	GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Lodging, error)

	// Update は宿泊施設の状態を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, lodging *Lodging) error

	// ListByHost はホストの宿泊施設一覧を取得する
	ListByHost(ctx context.Context, hostID string, limit, offset int) ([]*Lodging, error)
}
