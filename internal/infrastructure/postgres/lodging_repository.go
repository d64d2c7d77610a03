package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
)

const lodgingColumns = `id, host_id, name, max_capacity, price_per_night, state, retired_at, created_at, updated_at`

// lodgingRow はDBの行を表す構造体
type lodgingRow struct {
	ID            string          `db:"id"`
	HostID        string          `db:"host_id"`
	Name          string          `db:"name"`
	MaxCapacity   int             `db:"max_capacity"`
	PricePerNight decimal.Decimal `db:"price_per_night"`
	State         string          `db:"state"`
	RetiredAt     *time.Time      `db:"retired_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// toEntity はlodgingRowをLodgingエンティティに変換する
func (r *lodgingRow) toEntity() *lodging.Lodging {
	return &lodging.Lodging{
		ID:            r.ID,
		HostID:        r.HostID,
		Name:          r.Name,
		MaxCapacity:   r.MaxCapacity,
		PricePerNight: r.PricePerNight,
		State:         lodging.State(r.State),
		RetiredAt:     r.RetiredAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// LodgingRepository は宿泊施設リポジトリのPostgreSQL実装
type LodgingRepository struct {
	db *sqlx.DB
}

// NewLodgingRepository はLodgingRepositoryを作成する
func NewLodgingRepository(db *sqlx.DB) *LodgingRepository {
	return &LodgingRepository{db: db}
}

// Create は新しい宿泊施設を作成する
func (r *LodgingRepository) Create(ctx context.Context, l *lodging.Lodging) error {
	query := `
		INSERT INTO lodgings (host_id, name, max_capacity, price_per_night, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		l.HostID, l.Name, l.MaxCapacity, l.PricePerNight, string(l.State), l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("宿泊施設の作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDで宿泊施設を取得する
func (r *LodgingRepository) GetByID(ctx context.Context, id string) (*lodging.Lodging, error) {
	return r.get(ctx, r.db, `SELECT `+lodgingColumns+` FROM lodgings WHERE id = $1`, id)
}

// GetForUpdate は行ロックを取って宿泊施設を取得する
func (r *LodgingRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*lodging.Lodging, error) {
	sqlxTx, err := requireTx(tx)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, sqlxTx, `SELECT `+lodgingColumns+` FROM lodgings WHERE id = $1 FOR UPDATE`, id)
}

func (r *LodgingRepository) get(ctx context.Context, q queryer, query, id string) (*lodging.Lodging, error) {
	var row lodgingRow
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, lodging.ErrLodgingNotFound
		}
		if isConcurrencyFailure(err) {
			return nil, reservation.ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("宿泊施設の取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// Update は宿泊施設の状態を更新する
func (r *LodgingRepository) Update(ctx context.Context, tx transaction.Tx, l *lodging.Lodging) error {
	sqlxTx, err := requireTx(tx)
	if err != nil {
		return err
	}

	query := `UPDATE lodgings SET state = $1, retired_at = $2, updated_at = $3 WHERE id = $4`
	result, err := sqlxTx.ExecContext(ctx, query, string(l.State), l.RetiredAt, l.UpdatedAt, l.ID)
	if err != nil {
		return fmt.Errorf("宿泊施設の更新に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("影響行数の取得に失敗しました: %w", err)
	}
	if rows == 0 {
		return lodging.ErrLodgingNotFound
	}
	return nil
}

// ListByHost はホストの宿泊施設一覧を新しい順に取得する
func (r *LodgingRepository) ListByHost(ctx context.Context, hostID string, limit, offset int) ([]*lodging.Lodging, error) {
	var rows []lodgingRow
	query := `SELECT ` + lodgingColumns + ` FROM lodgings WHERE host_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, hostID, limit, offset); err != nil {
		return nil, fmt.Errorf("宿泊施設一覧の取得に失敗しました: %w", err)
	}

	lodgings := make([]*lodging.Lodging, len(rows))
	for i := range rows {
		lodgings[i] = rows[i].toEntity()
	}
	return lodgings, nil
}

var _ lodging.Repository = (*LodgingRepository)(nil)
