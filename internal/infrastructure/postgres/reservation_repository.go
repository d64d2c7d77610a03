package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/lodging"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
)

const reservationColumns = `id, guest_id, lodging_id, check_in, check_out, guest_count, total_price, status,
	confirmed_at, cancelled_at, cancel_reason, completed_at, created_at, updated_at`

type reservationRow struct {
	ID           string          `db:"id"`
	GuestID      string          `db:"guest_id"`
	LodgingID    string          `db:"lodging_id"`
	CheckIn      time.Time       `db:"check_in"`
	CheckOut     time.Time       `db:"check_out"`
	GuestCount   int             `db:"guest_count"`
	TotalPrice   decimal.Decimal `db:"total_price"`
	Status       string          `db:"status"`
	ConfirmedAt  *time.Time      `db:"confirmed_at"`
	CancelledAt  *time.Time      `db:"cancelled_at"`
	CancelReason sql.NullString  `db:"cancel_reason"`
	CompletedAt  *time.Time      `db:"completed_at"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID:           r.ID,
		GuestID:      r.GuestID,
		LodgingID:    r.LodgingID,
		CheckIn:      reservation.DateOf(r.CheckIn),
		CheckOut:     reservation.DateOf(r.CheckOut),
		GuestCount:   r.GuestCount,
		TotalPrice:   r.TotalPrice,
		Status:       reservation.Status(r.Status),
		ConfirmedAt:  r.ConfirmedAt,
		CancelledAt:  r.CancelledAt,
		CancelReason: r.CancelReason.String,
		CompletedAt:  r.CompletedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toReservations(rows []reservationRow) []*reservation.Reservation {
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

// ReservationRepository は予約リポジトリのPostgreSQL実装
type ReservationRepository struct{ db *sqlx.DB }

// NewReservationRepository はReservationRepositoryを作成する
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create は予約を挿入する
// DATE 列はセッションのタイムゾーンに左右されないよう文字列で渡す
// 期間が重なる承認待ち・確定済みの予約があれば排他制約違反となり ErrDateConflict を返す
func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx, err := requireTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reservations (guest_id, lodging_id, check_in, check_out, guest_count, total_price, status,
			confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = sqlxTx.QueryRowContext(ctx, query,
		res.GuestID, res.LodgingID, reservation.FormatDate(res.CheckIn), reservation.FormatDate(res.CheckOut), res.GuestCount, res.TotalPrice,
		string(res.Status), res.ConfirmedAt, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		switch {
		case pgCode(err) == codeExclusionViolation:
			return reservation.ErrDateConflict
		case pgCode(err) == codeForeignKeyViolation:
			return lodging.ErrLodgingNotFound
		case isConcurrencyFailure(err):
			return reservation.ErrConcurrentUpdate
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	return r.get(ctx, r.db, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

// GetForUpdate は行ロックを取って予約を取得する
func (r *ReservationRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	sqlxTx, err := requireTx(tx)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, sqlxTx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReservationRepository) get(ctx context.Context, q queryer, query, id string) (*reservation.Reservation, error) {
	var row reservationRow
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, reservation.ErrReservationNotFound
		}
		if isConcurrencyFailure(err) {
			return nil, reservation.ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByGuestID はゲストの予約を新しい順に取得する
func (r *ReservationRepository) GetByGuestID(ctx context.Context, guestID string, limit, offset int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE guest_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, guestID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toReservations(rows), nil
}

// FindByLodging は宿泊施設の全予約をチェックイン順に取得する
func (r *ReservationRepository) FindByLodging(ctx context.Context, lodgingID string) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE lodging_id = $1 ORDER BY check_in`
	if err := r.db.SelectContext(ctx, &rows, query, lodgingID); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("宿泊施設の予約取得に失敗: %w", err)
	}
	return toReservations(rows), nil
}

// FindBlockingByLodging は宿泊施設の承認待ち・確定済み予約を取得する
func (r *ReservationRepository) FindBlockingByLodging(ctx context.Context, tx transaction.Tx, lodgingID string) ([]*reservation.Reservation, error) {
	q, err := queryerFor(r.db, tx)
	if err != nil {
		return nil, err
	}

	statuses := make([]string, len(reservation.BlockingStatuses))
	for i, s := range reservation.BlockingStatuses {
		statuses[i] = string(s)
	}

	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE lodging_id = $1 AND status = ANY($2) ORDER BY check_in`
	if err := q.SelectContext(ctx, &rows, query, lodgingID, pq.Array(statuses)); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("有効な予約の取得に失敗: %w", err)
	}
	return toReservations(rows), nil
}

// Update は予約の状態と遷移時刻を更新する
func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx, err := requireTx(tx)
	if err != nil {
		return err
	}

	var reason sql.NullString
	if res.CancelReason != "" {
		reason = sql.NullString{String: res.CancelReason, Valid: true}
	}

	query := `
		UPDATE reservations
		SET status = $1, confirmed_at = $2, cancelled_at = $3, cancel_reason = $4, completed_at = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := sqlxTx.ExecContext(ctx, query,
		string(res.Status), res.ConfirmedAt, res.CancelledAt, reason, res.CompletedAt, res.UpdatedAt, res.ID,
	)
	if err != nil {
		if pgCode(err) == codeExclusionViolation {
			return reservation.ErrDateConflict
		}
		if isConcurrencyFailure(err) {
			return reservation.ErrConcurrentUpdate
		}
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// FindCompletable はチェックアウト日が today 以前の確定済み予約を古い順に取得する
func (r *ReservationRepository) FindCompletable(ctx context.Context, today time.Time, limit int) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = $1 AND check_out <= $2 ORDER BY check_out LIMIT $3`
	if err := r.db.SelectContext(ctx, &rows, query, string(reservation.StatusConfirmed), reservation.FormatDate(today), limit); err != nil {
		return nil, fmt.Errorf("完了対象の予約取得に失敗: %w", err)
	}
	return toReservations(rows), nil
}

var _ reservation.Repository = (*ReservationRepository)(nil)
