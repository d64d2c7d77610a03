package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-lodging-reservation/internal/domain/transaction"
)

// errForeignTx はこのパッケージ以外で作られた transaction.Tx を渡された場合のエラー
var errForeignTx = errors.New("transaction was not started by postgres.TxManager")

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
func (t *TxWrapper) Commit() error {
	return t.Tx.Commit()
}

// Rollback はトランザクションをロールバックする
// コミット済みの場合の ErrTxDone は無視する（defer での呼び出し用）
func (t *TxWrapper) Rollback() error {
	if err := t.Tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
// 重複チェックと挿入の間に他の予約が割り込まないよう READ COMMITTED + 行ロックで直列化する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

// queryer はトランザクション内外で共通に使うクエリ実行インターフェース
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// requireTx はトランザクション必須の操作で sqlx.Tx を取り出す
func requireTx(tx transaction.Tx) (*sqlx.Tx, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errForeignTx
	}
	return sqlxTx, nil
}

// queryerFor は tx が nil ならDB、そうでなければトランザクションを返す
func queryerFor(db *sqlx.DB, tx transaction.Tx) (queryer, error) {
	if tx == nil {
		return db, nil
	}
	sqlxTx, err := requireTx(tx)
	if err != nil {
		return nil, err
	}
	return sqlxTx, nil
}
