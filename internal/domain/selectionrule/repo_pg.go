package selectionrule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const ruleCols = `id, tier, age_group, code, priority, is_active, notes, created_at, updated_at`

func scanRule(row pgx.Row) (*SelectionRule, error) {
	var r SelectionRule
	err := row.Scan(&r.ID, &r.Tier, &r.AgeGroup, &r.Code, &r.Priority, &r.IsActive, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SelectionRule, error) {
	q := fmt.Sprintf("SELECT %s FROM selection_rules WHERE id = $1", ruleCols)
	return scanRule(r.pool.QueryRow(ctx, q, id))
}

func (r *RepoPG) FindActive(ctx context.Context, tier, ageGroup string) ([]*SelectionRule, error) {
	q := fmt.Sprintf(`SELECT %s FROM selection_rules
		WHERE tier = $1 AND age_group = $2 AND is_active = true
		ORDER BY priority DESC, updated_at DESC`, ruleCols)

	rows, err := r.pool.Query(ctx, q, tier, ageGroup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SelectionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rule)
	}
	return items, rows.Err()
}

func (r *RepoPG) List(ctx context.Context) ([]*SelectionRule, error) {
	q := fmt.Sprintf("SELECT %s FROM selection_rules ORDER BY tier, age_group, priority DESC", ruleCols)
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SelectionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rule)
	}
	return items, rows.Err()
}

// Upsert writes a rule inside a transaction that first deactivates any
// other active rule for the same (tier, age_group) pair, enforcing
// invariant I1 (at most one active rule per pair) at the storage layer.
func (r *RepoPG) Upsert(ctx context.Context, rule *SelectionRule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	if rule.IsActive {
		_, err := tx.Exec(ctx, `
			UPDATE selection_rules SET is_active = false, updated_at = NOW()
			WHERE tier = $1 AND age_group = $2 AND id != $3 AND is_active = true`,
			rule.Tier, rule.AgeGroup, rule.ID)
		if err != nil {
			return fmt.Errorf("deactivate conflicting rules: %w", err)
		}
	}

	const q = `
		INSERT INTO selection_rules (id, tier, age_group, code, priority, is_active, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			tier = EXCLUDED.tier,
			age_group = EXCLUDED.age_group,
			code = EXCLUDED.code,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active,
			notes = EXCLUDED.notes,
			updated_at = NOW()`
	if _, err := tx.Exec(ctx, q, rule.ID, rule.Tier, rule.AgeGroup, rule.Code, rule.Priority, rule.IsActive, rule.Notes); err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}

	return tx.Commit(ctx)
}
