// Package procedurecode stores the canonical CDT (Current Dental
// Terminology) procedure codes the selector resolves cases against.
package procedurecode

import "time"

// ProcedureCode is a single CDT code with the descriptive fields the
// selector and the generated documents need; codes are never deleted,
// only deactivated, so historical audit records can still resolve the
// code they were generated against.
type ProcedureCode struct {
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	IsPrimary   bool      `db:"is_primary" json:"is_primary"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
