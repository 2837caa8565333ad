package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository is append-only: there is deliberately no Update or Delete
// method, enforcing invariant I4 at the interface boundary.
type Repository interface {
	// Append persists a new record and returns it with ID/CreatedAt set.
	Append(ctx context.Context, r *Record) (*Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Record, int, error)
}
