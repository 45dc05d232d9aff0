package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/audit-ai/cro-backend/internal/audit/domain"
)

// RecordRepository persists audit records in Postgres. Expected schema:
//
//	create table audit_records (
//	    id           text primary key,
//	    shop         text not null,
//	    url          text not null,
//	    goal         text not null,
//	    status       text not null,
//	    rationale    text not null default '',
//	    created_at   timestamptz not null default now(),
//	    finalized_at timestamptz
//	);
//	create index audit_records_shop_idx on audit_records (shop, created_at desc);
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// Insert stores a new audit record.
func (r *RecordRepository) Insert(ctx context.Context, rec *domain.Record) error {
	const q = `
insert into audit_records (id, shop, url, goal, status, rationale, created_at)
values ($1, $2, $3, $4, $5, $6, $7)
`
	if _, err := r.pool.Exec(ctx, q, rec.ID, rec.Shop, rec.URL, rec.Goal, rec.Status, rec.Rationale, rec.CreatedAt); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListByShop returns the shop's audit records, newest first.
func (r *RecordRepository) ListByShop(ctx context.Context, shopDomain string, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
select id, shop, url, goal, status, rationale, created_at, finalized_at
from audit_records
where shop = $1
order by created_at desc
limit $2
`
	rows, err := r.pool.Query(ctx, q, shopDomain, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.Shop, &rec.URL, &rec.Goal, &rec.Status, &rec.Rationale, &rec.CreatedAt, &rec.FinalizedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkFinalized flips a record to reviewed and stamps the finalization time.
func (r *RecordRepository) MarkFinalized(ctx context.Context, shopDomain, id string, at time.Time) error {
	const q = `
update audit_records
set status = 'reviewed', finalized_at = $3
where id = $1 and shop = $2
`
	tag, err := r.pool.Exec(ctx, q, id, shopDomain, at)
	if err != nil {
		return fmt.Errorf("finalize audit record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// PurgeOlderThan deletes records created before the cutoff and returns how
// many were removed. Used by the nightly retention sweep.
func (r *RecordRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `delete from audit_records where created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit records: %w", err)
	}
	return tag.RowsAffected(), nil
}
