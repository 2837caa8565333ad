// Package selectionrule stores the (tier, age_group) -> procedure code
// mapping the selector consults; it owns the invariants that guarantee
// the selector's rule lookup is unambiguous.
package selectionrule

import (
	"time"

	"github.com/google/uuid"
)

// SelectionRule maps a (tier, age_group) pair to the CDT code that should
// be selected for it. The selector orders candidate rules by priority, then
// recency; the partial unique index on active (tier, age_group) pairs
// allows at most one active rule per pair at any time (invariant I1).
type SelectionRule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Tier      string    `db:"tier" json:"tier"`
	AgeGroup  string    `db:"age_group" json:"age_group"`
	Code      string    `db:"code" json:"code"`
	Priority  int       `db:"priority" json:"priority"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
