package selectionrule

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists SelectionRule records.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*SelectionRule, error)
	// FindActive returns the rules active for a (tier, age_group) pair,
	// ordered priority DESC, updated_at DESC — the order the selector
	// must read them in to pick a winner deterministically.
	FindActive(ctx context.Context, tier, ageGroup string) ([]*SelectionRule, error)
	List(ctx context.Context) ([]*SelectionRule, error)
	// Upsert writes a rule. Implementations must enforce invariant I1 by
	// deactivating any other active rule for the same (tier, age_group)
	// pair within the same transaction.
	Upsert(ctx context.Context, r *SelectionRule) error
}
