// Package audit implements the append-only generation log: every document
// generation attempt, successful or not, is written exactly once and never
// updated or deleted afterward.
package audit

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Record is one generation attempt. The id doubles as the generation_id
// returned to callers and as the anchor of the version chain a later
// regeneration links back to via PreviousVersionUUID.
type Record struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	UserID              string     `db:"user_id" json:"user_id"`
	DocumentKind        string     `db:"document_kind" json:"document_kind"`
	DocumentVersion     string     `db:"document_version" json:"document_version"`
	InputData           string     `db:"input_data" json:"input_data"`
	OutputData          string     `db:"output_data" json:"output_data"`
	ModelUsed           string     `db:"model_used" json:"model_used"`
	TokensUsed          *int       `db:"tokens_used" json:"tokens_used,omitempty"`
	GenerationTimeMS    *int       `db:"generation_time_ms" json:"generation_time_ms,omitempty"`
	Status              Status     `db:"status" json:"status"`
	ErrorMessage        string     `db:"error_message" json:"error_message,omitempty"`
	Seed                int        `db:"seed" json:"seed"`
	IsRegenerated       bool       `db:"is_regenerated" json:"is_regenerated"`
	PreviousVersionUUID *uuid.UUID `db:"previous_version_uuid" json:"previous_version_uuid,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`

	// RequestIP and RequestID are sourced from the HTTP layer purely for
	// operational traceability; they participate in no invariant and are
	// write-only from the API's perspective, so their json:"-" tag excludes
	// them from every response payload.
	RequestIP string `db:"request_ip" json:"-"`
	RequestID string `db:"request_id" json:"-"`
}
