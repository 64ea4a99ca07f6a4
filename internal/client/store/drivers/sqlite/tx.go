package sqlite

import (
	"context"
	"database/sql"

	"github.com/infosharesystems/vres-client/internal/client/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open; caller commits or rolls back

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Sessions() store.Sessions         { return &sessionsRepo{q: t.tx} }
func (t *txStore) VoucherCache() store.VoucherCache { return &voucherCacheRepo{q: t.tx} }
func (t *txStore) Redemptions() store.Redemptions   { return &redemptionsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations run before any tx
