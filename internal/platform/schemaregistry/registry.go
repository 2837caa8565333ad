// Package schemaregistry is the static document-kind → schema version
// mapping attached to every generation and carried forward onto its
// confirmation record.
package schemaregistry

// defaultVersion is returned for a document kind with no explicit entry,
// matching the upstream registry's fallback.
const defaultVersion = "1.0"

var versions = map[string]string{
	"treatment_summary": "1.0",
	"insurance_summary": "1.0",
	"progress_notes":    "1.0",
}

// VersionFor returns the current schema version string for a document
// kind, or defaultVersion if the kind is unrecognized.
func VersionFor(documentKind string) string {
	if v, ok := versions[documentKind]; ok {
		return v
	}
	return defaultVersion
}
