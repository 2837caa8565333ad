// Package confirmation tracks clinician sign-off on a generated document.
// At most one confirmation record may exist per generation id (invariant I7).
package confirmation

import (
	"time"

	"github.com/google/uuid"
)

type Record struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	GenerationID     uuid.UUID  `db:"generation_id" json:"generation_id"`
	UserID           string     `db:"user_id" json:"user_id"`
	DocumentKind     string     `db:"document_kind" json:"document_kind"`
	DocumentVersion  string     `db:"document_version" json:"document_version"`
	ConfirmedAt      time.Time  `db:"confirmed_at" json:"confirmed_at"`
	ConfirmedPayload string     `db:"confirmed_payload" json:"confirmed_payload"`
	Notes            string     `db:"notes" json:"notes,omitempty"`
	PDFGeneratedAt   *time.Time `db:"pdf_generated_at" json:"pdf_generated_at,omitempty"`
}
