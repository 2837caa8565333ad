package procedurecode

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const procedureCodeCols = `code, description, category, is_primary, is_active, notes, created_at, updated_at`

func scanProcedureCode(row pgx.Row) (*ProcedureCode, error) {
	var pc ProcedureCode
	err := row.Scan(&pc.Code, &pc.Description, &pc.Category, &pc.IsPrimary, &pc.IsActive, &pc.Notes, &pc.CreatedAt, &pc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

func (r *RepoPG) GetByCode(ctx context.Context, code string) (*ProcedureCode, error) {
	q := fmt.Sprintf("SELECT %s FROM procedure_codes WHERE code = $1", procedureCodeCols)
	return scanProcedureCode(r.pool.QueryRow(ctx, q, code))
}

func (r *RepoPG) List(ctx context.Context, activeOnly bool) ([]*ProcedureCode, error) {
	q := fmt.Sprintf("SELECT %s FROM procedure_codes", procedureCodeCols)
	if activeOnly {
		q += " WHERE is_active = true"
	}
	q += " ORDER BY code"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ProcedureCode
	for rows.Next() {
		pc, err := scanProcedureCode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, pc)
	}
	return items, rows.Err()
}

// Upsert inserts a procedure code or, if the code already exists, updates
// its description/category/active flag. Used by the seed command so
// re-running it is idempotent.
func (r *RepoPG) Upsert(ctx context.Context, pc *ProcedureCode) error {
	const q = `
		INSERT INTO procedure_codes (code, description, category, is_primary, is_active, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			is_primary = EXCLUDED.is_primary,
			is_active = EXCLUDED.is_active,
			notes = EXCLUDED.notes,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, pc.Code, pc.Description, pc.Category, pc.IsPrimary, pc.IsActive, pc.Notes)
	return err
}

func (r *RepoPG) Deactivate(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, `UPDATE procedure_codes SET is_active = false, updated_at = NOW() WHERE code = $1`, code)
	return err
}

func (r *RepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM procedure_codes`).Scan(&n)
	return n, err
}
