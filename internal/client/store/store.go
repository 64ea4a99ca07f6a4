package store

import (
	"context"
	"errors"

	"github.com/infosharesystems/vres-client/internal/client/domain"
)

// ErrNotFound is returned when persisted state is absent. Malformed or
// tamper-damaged records also read as ErrNotFound: corrupt local state must
// look like no state, never crash the client.
var ErrNotFound = errors.New("store: not found")

// Store is the durable local state of the client. Concrete drivers (sqlite)
// implement it. Sub-repositories keep the three concerns separate; anything
// that spans them, or must be atomic against concurrent readers of the same
// repo, goes through WithTx.
type Store interface {
	Sessions() Sessions
	VoucherCache() VoucherCache
	Redemptions() Redemptions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back if fn errors
	// and committing otherwise. Prefer this over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying database handle.
	Close() error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Sessions persists the authenticated identity and its active session.
type Sessions interface {
	// Get returns the persisted identity and active session, or
	// ErrNotFound when absent or unreadable.
	Get(ctx context.Context) (domain.Identity, domain.ActiveSession, error)

	// Put persists identity and active session together. The write is
	// atomic: a concurrent Get sees either the old state or the new one,
	// never a mix.
	Put(ctx context.Context, id domain.Identity, as domain.ActiveSession) error

	// Clear removes every session key (token, identity, active session,
	// selected project, department). A subsequent Get returns ErrNotFound.
	Clear(ctx context.Context) error
}

// VoucherCache holds at most one voucher code whose initiate call succeeded
// but whose OTP confirmation has not completed.
type VoucherCache interface {
	Get(ctx context.Context) (domain.CachedCode, error)
	Put(ctx context.Context, c domain.CachedCode) error
	Clear(ctx context.Context) error
}

// Redemptions is the vendor's durable redemption history.
type Redemptions interface {
	// Append adds a record. Records are listed newest first.
	Append(ctx context.Context, r domain.RedemptionRecord) error
	List(ctx context.Context) ([]domain.RedemptionRecord, error)
	Clear(ctx context.Context) error
}
