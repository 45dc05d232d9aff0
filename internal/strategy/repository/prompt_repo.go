package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Prompt is one previously submitted strategy goal.
type Prompt struct {
	ID        string    `json:"id"`
	Shop      string    `json:"shop"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PromptRepository stores previous strategy prompts per shop. Expected
// schema:
//
//	create table strategy_prompts (
//	    id         uuid primary key default gen_random_uuid(),
//	    shop       text not null,
//	    text       text not null,
//	    created_at timestamptz not null default now()
//	);
//	create index strategy_prompts_shop_idx on strategy_prompts (shop, created_at desc);
type PromptRepository struct {
	pool *pgxpool.Pool
}

// NewPromptRepository creates a new PromptRepository.
func NewPromptRepository(pool *pgxpool.Pool) *PromptRepository {
	return &PromptRepository{pool: pool}
}

// Save records a submitted goal string for the shop.
func (r *PromptRepository) Save(ctx context.Context, shopDomain, text string) error {
	const q = `insert into strategy_prompts (shop, text) values ($1, $2)`
	if _, err := r.pool.Exec(ctx, q, shopDomain, text); err != nil {
		return fmt.Errorf("save prompt: %w", err)
	}
	return nil
}

// Recent returns the shop's most recent prompts, newest first.
func (r *PromptRepository) Recent(ctx context.Context, shopDomain string, limit int) ([]Prompt, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
select id, shop, text, created_at
from strategy_prompts
where shop = $1
order by created_at desc
limit $2
`
	rows, err := r.pool.Query(ctx, q, shopDomain, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var out []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Shop, &p.Text, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
