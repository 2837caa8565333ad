package confirmation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts a confirmation record. Implementations MUST enforce
	// invariant I7 (at most one confirmation per generation_id) with a
	// database-level unique constraint and report a violation distinctly
	// so the service can translate it to ErrAlreadyConfirmed.
	Create(ctx context.Context, r *Record) (*Record, error)
	GetByGenerationID(ctx context.Context, generationID uuid.UUID) (*Record, error)
}
