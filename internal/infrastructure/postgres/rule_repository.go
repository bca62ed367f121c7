package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/execution-hub/repo-automation/internal/domain/rule"
)

// RuleRepository implements rule.Repository as one row of the kv_store table.
type RuleRepository struct {
	pool *pgxpool.Pool
	key  string
}

func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool, key: rule.StorageKey}
}

func (r *RuleRepository) Load(ctx context.Context) ([]*rule.Rule, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key=$1`, r.key).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return []*rule.Rule{}, nil
		}
		return nil, err
	}
	return rule.UnmarshalCollection(data)
}

func (r *RuleRepository) Save(ctx context.Context, rules []*rule.Rule) error {
	data, err := rule.MarshalCollection(rules)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at
	`, r.key, data)
	return err
}

// Update locks the collection row for the duration of one transaction, so
// concurrent writers from any process apply their changes one after another.
func (r *RuleRepository) Update(ctx context.Context, fn rule.UpdateFunc) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO kv_store (key, value, updated_at)
			VALUES ($1, '[]'::jsonb, NOW())
			ON CONFLICT (key) DO NOTHING
		`, r.key)
		if err != nil {
			return err
		}

		var data []byte
		if err := tx.QueryRow(ctx, `SELECT value FROM kv_store WHERE key=$1 FOR UPDATE`, r.key).Scan(&data); err != nil {
			return err
		}
		current, err := rule.UnmarshalCollection(data)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		out, err := rule.MarshalCollection(next)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE kv_store SET value=$2, updated_at=NOW() WHERE key=$1`, r.key, out)
		return err
	})
}
