package sqlite

import (
	"context"

	"github.com/infosharesystems/vres-client/internal/client/domain"
	"github.com/infosharesystems/vres-client/internal/client/store"
)

type voucherCacheRepo struct {
	q dbtx
}

func (r *voucherCacheRepo) Get(ctx context.Context) (domain.CachedCode, error) {
	var code, method, acquiredAt string
	err := r.q.QueryRowContext(ctx,
		`SELECT code, method, acquired_at FROM voucher_cache WHERE id = 1`,
	).Scan(&code, &method, &acquiredAt)
	if err != nil {
		return domain.CachedCode{}, mapNotFound(err)
	}
	if code == "" {
		return domain.CachedCode{}, store.ErrNotFound
	}

	return domain.CachedCode{
		Code:       code,
		Method:     domain.AcquireMethod(method),
		AcquiredAt: parseTime(acquiredAt),
	}, nil
}

func (r *voucherCacheRepo) Put(ctx context.Context, c domain.CachedCode) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO voucher_cache (id, code, method, acquired_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     code = excluded.code, method = excluded.method, acquired_at = excluded.acquired_at`,
		c.Code, string(c.Method), formatTime(c.AcquiredAt),
	)
	return err
}

func (r *voucherCacheRepo) Clear(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM voucher_cache WHERE id = 1`)
	return err
}
