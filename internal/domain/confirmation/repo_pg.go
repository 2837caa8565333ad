package confirmation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint
// violation, used to recognize a duplicate confirmation attempt.
const uniqueViolation = "23505"

// ErrDuplicateGenerationID is returned by Create when the database's
// unique index on generation_id rejects the insert. Unwrap via errors.Is.
var ErrDuplicateGenerationID = errors.New("confirmation already exists for generation_id")

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const recordCols = `id, generation_id, user_id, document_kind, document_version,
	confirmed_at, confirmed_payload, notes, pdf_generated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.GenerationID, &r.UserID, &r.DocumentKind, &r.DocumentVersion,
		&r.ConfirmedAt, &r.ConfirmedPayload, &r.Notes, &r.PDFGeneratedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *RepoPG) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	q := fmt.Sprintf(`INSERT INTO confirmation_records (%s)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6, $7, $8)
		RETURNING %s`, recordCols, recordCols)
	row := r.pool.QueryRow(ctx, q,
		rec.ID, rec.GenerationID, rec.UserID, rec.DocumentKind, rec.DocumentVersion,
		rec.ConfirmedPayload, rec.Notes, rec.PDFGeneratedAt,
	)
	result, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateGenerationID
		}
		return nil, err
	}
	return result, nil
}

func (r *RepoPG) GetByGenerationID(ctx context.Context, generationID uuid.UUID) (*Record, error) {
	q := fmt.Sprintf("SELECT %s FROM confirmation_records WHERE generation_id = $1", recordCols)
	rec, err := scanRecord(r.pool.QueryRow(ctx, q, generationID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rec, err
}
