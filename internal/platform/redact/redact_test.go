package redact

import "testing"

func TestMarker_Deterministic(t *testing.T) {
	a := Marker("patient@example.com")
	b := Marker("patient@example.com")
	if a != b {
		t.Errorf("Marker() not deterministic: %q != %q", a, b)
	}
	if !IsMarker(a) {
		t.Errorf("IsMarker(%q) = false, want true", a)
	}
}

func TestMarker_DifferentInputsDifferentMarkers(t *testing.T) {
	if Marker("a") == Marker("b") {
		t.Error("Marker() collided for distinct inputs")
	}
}

func TestFields_Idempotent(t *testing.T) {
	data := map[string]any{"patient_name": "Jane Doe", "tier": "moderate"}
	once := Fields(data, []string{"patient_name"})
	twice := Fields(once, []string{"patient_name"})
	if once["patient_name"] != twice["patient_name"] {
		t.Errorf("Fields() not idempotent: %v != %v", once["patient_name"], twice["patient_name"])
	}
	if twice["tier"] != "moderate" {
		t.Errorf("non-redacted field mutated: %v", twice["tier"])
	}
}

func TestFields_AbsentOrNilUntouched(t *testing.T) {
	data := map[string]any{"tier": "moderate", "dentist_note": nil}
	out := Fields(data, []string{"patient_name", "dentist_note"})
	if _, present := out["patient_name"]; present {
		t.Error("absent field was added to output")
	}
	if out["dentist_note"] != nil {
		t.Error("nil field was redacted")
	}
}

func TestFields_NonStringValuesUntouched(t *testing.T) {
	data := map[string]any{"patient_age": 15, "whitening_included": true}
	out := Fields(data, []string{"patient_age", "whitening_included"})
	if out["patient_age"] != 15 {
		t.Errorf("non-string field was redacted: %v", out["patient_age"])
	}
	if out["whitening_included"] != true {
		t.Errorf("non-string field was redacted: %v", out["whitening_included"])
	}
}

func TestFields_EmptyStringUntouched(t *testing.T) {
	data := map[string]any{"dentist_note": ""}
	out := Fields(data, []string{"dentist_note"})
	if out["dentist_note"] != "" {
		t.Errorf("empty string field was redacted: %v", out["dentist_note"])
	}
}

func TestPrepareAuditData_RedactTakesPriority(t *testing.T) {
	p := Policy{StoreFullAuditData: true, RedactPHIFields: true, PHIFieldsToRedact: []string{"patient_name"}}
	out, err := p.PrepareAuditData(map[string]any{"patient_name": "Jane Doe"})
	if err != nil {
		t.Fatalf("PrepareAuditData() error = %v", err)
	}
	if !containsMarkerPrefix(out) {
		t.Errorf("expected redaction marker in output, got %s", out)
	}
}

func TestPrepareAuditData_NeitherFlagStoresMinimal(t *testing.T) {
	p := Policy{}
	out, err := p.PrepareAuditData(map[string]any{"patient_name": "Jane Doe"})
	if err != nil {
		t.Fatalf("PrepareAuditData() error = %v", err)
	}
	if containsMarkerPrefix(out) {
		t.Errorf("minimal storage should not contain patient data, got %s", out)
	}
}

func containsMarkerPrefix(s string) bool {
	return len(s) > 0 && (indexOf(s, markerPrefix) >= 0)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
