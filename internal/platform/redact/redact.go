// Package redact implements the PHI redaction contract applied to request
// payloads before they are written to the audit log: a field is either
// stored verbatim, replaced with a deterministic hash marker, or dropped
// entirely, depending on configuration.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// markerPrefix begins every redaction marker; Idempotent detects it to
// avoid re-hashing an already-redacted value.
const markerPrefix = "[REDACTED:"

// Policy controls how PrepareAuditData treats a payload. It mirrors the
// three settings the upstream service read from configuration.
type Policy struct {
	StoreFullAuditData bool
	RedactPHIFields    bool
	PHIFieldsToRedact  []string
}

// Marker returns the redaction marker for value: "[REDACTED:" followed by
// the first 8 hex characters of the SHA-256 digest of value, then "]". It
// is a pure function of value, so the same input always redacts to the
// same marker, which lets operators correlate redacted audit rows without
// recovering the original value.
func Marker(value string) string {
	sum := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%s%s]", markerPrefix, hex.EncodeToString(sum[:])[:8])
}

// IsMarker reports whether value is already a redaction marker, so
// Fields can be applied idempotently to data that may have passed through
// redaction once already.
func IsMarker(value string) bool {
	return strings.HasPrefix(value, markerPrefix) && strings.HasSuffix(value, "]")
}

// Fields returns a copy of data in which each named top-level key holding a
// present, non-empty string value is replaced with its marker; data itself
// is not modified (with no fields named, data is returned as is). Values
// that already are markers, non-string values (numbers, booleans, nested
// objects) and missing or empty-string values are left untouched.
func Fields(data map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return data
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, field := range fields {
		v, ok := out[field]
		if !ok {
			continue
		}
		s, isString := v.(string)
		if !isString || s == "" {
			continue
		}
		if IsMarker(s) {
			continue
		}
		out[field] = Marker(s)
	}
	return out
}

// PrepareAuditData renders data as a JSON string for storage in an audit
// record, applying the policy's three-way switch:
//
//  1. RedactPHIFields: redact the configured fields, store the rest.
//  2. StoreFullAuditData (and not 1): store data verbatim.
//  3. Neither: store a minimal placeholder noting storage was disabled.
func (p Policy) PrepareAuditData(data map[string]any) (string, error) {
	switch {
	case p.RedactPHIFields:
		redacted := Fields(data, p.PHIFieldsToRedact)
		b, err := json.Marshal(redacted)
		if err != nil {
			return "", fmt.Errorf("marshal redacted audit data: %w", err)
		}
		return string(b), nil
	case p.StoreFullAuditData:
		b, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("marshal audit data: %w", err)
		}
		return string(b), nil
	default:
		b, err := json.Marshal(map[string]any{"redacted": true})
		if err != nil {
			return "", fmt.Errorf("marshal minimal audit data: %w", err)
		}
		return string(b), nil
	}
}
