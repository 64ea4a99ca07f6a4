package sqlite

import (
	"context"

	"github.com/infosharesystems/vres-client/internal/client/domain"
)

type redemptionsRepo struct {
	q dbtx
}

func (r *redemptionsRepo) Append(ctx context.Context, rec domain.RedemptionRecord) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO redemptions (id, code, method, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Code, string(rec.Method), string(rec.Status), formatTime(rec.CreatedAt),
	)
	return err
}

func (r *redemptionsRepo) List(ctx context.Context) ([]domain.RedemptionRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, code, method, status, created_at FROM redemptions ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RedemptionRecord
	for rows.Next() {
		var rec domain.RedemptionRecord
		var method, status, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Code, &method, &status, &createdAt); err != nil {
			return nil, err
		}
		rec.Method = domain.AcquireMethod(method)
		rec.Status = domain.RedemptionStatus(status)
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *redemptionsRepo) Clear(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM redemptions`)
	return err
}
