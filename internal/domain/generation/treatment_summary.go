package generation

import (
	"github.com/google/uuid"

	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
)

// TreatmentSummaryRequest is the decoded POST /api/v1/generate-treatment-summary
// body. Every field is optional; Defaults fills in the documented fallbacks
// before Validate runs.
type TreatmentSummaryRequest struct {
	Tier                string `json:"tier"`
	PatientAge          *int   `json:"patient_age"`
	PatientName         string `json:"patient_name"`
	PracticeName        string `json:"practice_name"`
	TreatmentType       string `json:"treatment_type"`
	AreaTreated         string `json:"area_treated"`
	DurationRange       string `json:"duration_range"`
	CaseDifficulty      string `json:"case_difficulty"`
	MonitoringApproach  string `json:"monitoring_approach"`
	Attachments         string `json:"attachments"`
	WhiteningIncluded   bool   `json:"whitening_included"`
	DentistNote         string `json:"dentist_note"`
	Audience            string `json:"audience"`
	Tone                string `json:"tone"`
	IsRegeneration      bool   `json:"is_regeneration"`
	PreviousVersionUUID string `json:"previous_version_uuid"`
}

// Defaults fills in the documented fallback values for any field the
// caller omitted.
func (r *TreatmentSummaryRequest) Defaults() {
	if r.TreatmentType == "" {
		r.TreatmentType = string(doctypes.TreatmentClearAligners)
	}
	if r.AreaTreated == "" {
		r.AreaTreated = string(doctypes.AreaBoth)
	}
	if r.DurationRange == "" {
		r.DurationRange = "4-6 months"
	}
	if r.Audience == "" {
		r.Audience = string(doctypes.AudiencePatient)
	}
	if r.Tone == "" {
		r.Tone = string(doctypes.ToneReassuring)
	}
}

// Validate checks enum membership and bounds, collecting every violation
// so a single 422 response reports them all.
func (r *TreatmentSummaryRequest) Validate() doctypes.ValidationErrors {
	var errs doctypes.ValidationErrors

	if r.Tier != "" && !doctypes.CaseTier(r.Tier).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "tier", Reason: "not a recognized case tier"})
	}
	if r.PatientAge != nil && (*r.PatientAge < 0 || *r.PatientAge > 120) {
		errs = append(errs, doctypes.ValidationError{Field: "patient_age", Reason: "must be between 0 and 120"})
	}
	if len(r.PatientName) > 200 {
		errs = append(errs, doctypes.ValidationError{Field: "patient_name", Reason: "must be at most 200 characters"})
	}
	if len(r.PracticeName) > 200 {
		errs = append(errs, doctypes.ValidationError{Field: "practice_name", Reason: "must be at most 200 characters"})
	}
	if !doctypes.TreatmentType(r.TreatmentType).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "treatment_type", Reason: "not a recognized treatment type"})
	}
	if !doctypes.AreaTreated(r.AreaTreated).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "area_treated", Reason: "must be upper, lower, or both"})
	}
	if len(r.DurationRange) == 0 || len(r.DurationRange) > 50 {
		errs = append(errs, doctypes.ValidationError{Field: "duration_range", Reason: "must be 1-50 characters"})
	}
	if r.CaseDifficulty != "" && !doctypes.CaseDifficulty(r.CaseDifficulty).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "case_difficulty", Reason: "not a recognized case difficulty"})
	}
	if r.MonitoringApproach != "" && !doctypes.MonitoringApproach(r.MonitoringApproach).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "monitoring_approach", Reason: "not a recognized monitoring approach"})
	}
	if r.Attachments != "" && !doctypes.Attachments(r.Attachments).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "attachments", Reason: "not a recognized attachments level"})
	}
	if len(r.DentistNote) > 500 {
		errs = append(errs, doctypes.ValidationError{Field: "dentist_note", Reason: "must be at most 500 characters"})
	}
	if !doctypes.Audience(r.Audience).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "audience", Reason: "must be patient or internal"})
	}
	if !doctypes.Tone(r.Tone).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "tone", Reason: "not a recognized tone"})
	}
	if r.PreviousVersionUUID != "" {
		if _, err := uuid.Parse(r.PreviousVersionUUID); err != nil {
			errs = append(errs, doctypes.ValidationError{Field: "previous_version_uuid", Reason: "must be a valid UUID"})
		}
	}

	return errs
}

// TreatmentSummaryDocument is the two-field structured LLM output §4.3
// mandates.
type TreatmentSummaryDocument struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// CDTCodes is the treatment-summary response's procedure-code envelope.
type CDTCodes struct {
	PrimaryCode        string  `json:"primary_code"`
	PrimaryDescription string  `json:"primary_description"`
	SuggestedAddOns    []AddOn `json:"suggested_add_ons"`
	Notes              string  `json:"notes"`
}

type AddOn struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Metadata is common to both generation response envelopes.
type Metadata struct {
	TokensUsed       int    `json:"tokens_used"`
	GenerationTimeMS int    `json:"generation_time_ms"`
	Seed             int    `json:"seed"`
	DocumentVersion  string `json:"document_version"`
}

// TreatmentSummaryMetadata additionally carries the audience/tone the
// document was generated with.
type TreatmentSummaryMetadata struct {
	Metadata
	Audience string `json:"audience"`
	Tone     string `json:"tone"`
}

// TreatmentSummaryResponse is the full POST /api/v1/generate-treatment-summary
// response body.
type TreatmentSummaryResponse struct {
	Success             bool                     `json:"success"`
	Document            TreatmentSummaryDocument `json:"document"`
	CDTCodes            CDTCodes                 `json:"cdt_codes"`
	Metadata            TreatmentSummaryMetadata `json:"metadata"`
	UUID                uuid.UUID                `json:"uuid"`
	IsRegenerated       bool                     `json:"is_regenerated"`
	PreviousVersionUUID *uuid.UUID               `json:"previous_version_uuid,omitempty"`
	Seed                int                      `json:"seed"`
}
