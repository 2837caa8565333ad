package generation

import (
	"github.com/google/uuid"

	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
)

// InsuranceSummaryRequest is the decoded POST /api/v1/generate-insurance-summary
// body. Tier and AgeGroup are required; everything else has a fallback.
type InsuranceSummaryRequest struct {
	Tier                string                    `json:"tier"`
	Arches              string                    `json:"arches"`
	AgeGroup            string                    `json:"age_group"`
	RetainersIncluded   bool                      `json:"retainers_included"`
	DiagnosticAssets    InsuranceDiagnosticAssets `json:"diagnostic_assets"`
	MonitoringApproach  string                    `json:"monitoring_approach"`
	Notes               string                    `json:"notes"`
	IsRegeneration      bool                      `json:"is_regeneration"`
	PreviousVersionUUID string                    `json:"previous_version_uuid"`
}

type InsuranceDiagnosticAssets struct {
	IntraoralPhotos bool `json:"intraoral_photos"`
	PanoramicXray   bool `json:"panoramic_xray"`
	FMX             bool `json:"fmx"`
	DiagnosticCasts bool `json:"diagnostic_casts"`
}

func (r *InsuranceSummaryRequest) Defaults() {
	if r.Arches == "" {
		r.Arches = string(doctypes.ArchesBoth)
	}
	if r.MonitoringApproach == "" {
		r.MonitoringApproach = string(doctypes.MonitoringRemote)
	}
}

func (r *InsuranceSummaryRequest) Validate() doctypes.ValidationErrors {
	var errs doctypes.ValidationErrors

	if r.Tier == "" {
		errs = append(errs, doctypes.ValidationError{Field: "tier", Reason: "is required"})
	} else if !doctypes.InsuranceTier(r.Tier).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "tier", Reason: "must be express_mild, moderate, or complex"})
	}
	if !doctypes.Arches(r.Arches).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "arches", Reason: "must be upper, lower, or both"})
	}
	if r.AgeGroup == "" {
		errs = append(errs, doctypes.ValidationError{Field: "age_group", Reason: "is required"})
	} else if r.AgeGroup != string(doctypes.AgeGroupAdolescent) && r.AgeGroup != string(doctypes.AgeGroupAdult) {
		errs = append(errs, doctypes.ValidationError{Field: "age_group", Reason: "must be adolescent or adult"})
	}
	if r.MonitoringApproach != "" && !doctypes.MonitoringApproach(r.MonitoringApproach).Valid() {
		errs = append(errs, doctypes.ValidationError{Field: "monitoring_approach", Reason: "not a recognized monitoring approach"})
	}
	if r.PreviousVersionUUID != "" {
		if _, err := uuid.Parse(r.PreviousVersionUUID); err != nil {
			errs = append(errs, doctypes.ValidationError{Field: "previous_version_uuid", Reason: "must be a valid UUID"})
		}
	}

	return errs
}

// InsuranceSummaryDocument is the structured LLM output for the insurance
// pipeline; Disclaimer is always the fixed string, never model-authored.
type InsuranceSummaryDocument struct {
	InsuranceSummary string `json:"insurance_summary"`
	Disclaimer       string `json:"disclaimer"`
}

// InsuranceCDTCode is one entry of the insurance response's flat code list
// (primary code plus any diagnostic add-ons, undistinguished).
type InsuranceCDTCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type InsuranceSummaryResponse struct {
	Success             bool                     `json:"success"`
	Document            InsuranceSummaryDocument `json:"document"`
	CDTCodes            []InsuranceCDTCode       `json:"cdt_codes"`
	Metadata            Metadata                 `json:"metadata"`
	UUID                uuid.UUID                `json:"uuid"`
	IsRegenerated       bool                     `json:"is_regenerated"`
	PreviousVersionUUID *uuid.UUID               `json:"previous_version_uuid,omitempty"`
	Seed                int                      `json:"seed"`
}
