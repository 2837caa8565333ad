package audit

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

const recordCols = `id, user_id, document_kind, document_version, input_data, output_data,
	model_used, tokens_used, generation_time_ms, status, error_message,
	seed, is_regenerated, previous_version_uuid, request_ip, request_id, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.UserID, &r.DocumentKind, &r.DocumentVersion, &r.InputData, &r.OutputData,
		&r.ModelUsed, &r.TokensUsed, &r.GenerationTimeMS, &r.Status, &r.ErrorMessage,
		&r.Seed, &r.IsRegenerated, &r.PreviousVersionUUID, &r.RequestIP, &r.RequestID, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Append is the only write this repository exposes: audit_records has no
// UPDATE or DELETE path anywhere in this codebase.
func (r *RepoPG) Append(ctx context.Context, rec *Record) (*Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	q := fmt.Sprintf(`INSERT INTO audit_records (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		RETURNING %s`, recordCols, recordCols)
	row := r.pool.QueryRow(ctx, q,
		rec.ID, rec.UserID, rec.DocumentKind, rec.DocumentVersion, rec.InputData, rec.OutputData,
		rec.ModelUsed, rec.TokensUsed, rec.GenerationTimeMS, rec.Status, rec.ErrorMessage,
		rec.Seed, rec.IsRegenerated, rec.PreviousVersionUUID, rec.RequestIP, rec.RequestID,
	)
	return scanRecord(row)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	q := fmt.Sprintf("SELECT %s FROM audit_records WHERE id = $1", recordCols)
	rec, err := scanRecord(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *RepoPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Record, int, error) {
	var total int
	countQ := "SELECT COUNT(*) FROM audit_records WHERE user_id = $1"
	if err := r.pool.QueryRow(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_records WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", recordCols)
	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
