// Package doctypes holds the shared value types used across the document
// generation domain: enumerations for case inputs, the tiers used by the
// CDT procedure code selector, and the small validation helpers each
// handler needs before a request reaches a service.
package doctypes

import "fmt"

// CaseTier buckets a case by overall complexity for procedure code
// selection. It is coarser than CaseDifficulty, which describes the
// clinical narrative instead of the billing tier.
type CaseTier string

const (
	CaseTierExpress  CaseTier = "express"
	CaseTierMild     CaseTier = "mild"
	CaseTierModerate CaseTier = "moderate"
	CaseTierComplex  CaseTier = "complex"
)

func (t CaseTier) Valid() bool {
	switch t {
	case CaseTierExpress, CaseTierMild, CaseTierModerate, CaseTierComplex:
		return true
	}
	return false
}

// AgeGroup is a patient's age category. Insurance-summary requests supply
// it directly; elsewhere it is derived from a patient's age by
// ResolveAgeGroup.
type AgeGroup string

const (
	AgeGroupAdolescent AgeGroup = "adolescent"
	AgeGroupAdult      AgeGroup = "adult"
	AgeGroupUnknown    AgeGroup = "unknown"
)

func (a AgeGroup) Valid() bool {
	switch a {
	case AgeGroupAdolescent, AgeGroupAdult, AgeGroupUnknown:
		return true
	}
	return false
}

// ResolveAgeGroup classifies a patient's age in years. A nil age (unknown
// patient age) resolves to AgeGroupUnknown rather than erroring, matching
// the permissive classification used upstream of the selector.
func ResolveAgeGroup(age *int) AgeGroup {
	if age == nil {
		return AgeGroupUnknown
	}
	if *age < 18 {
		return AgeGroupAdolescent
	}
	return AgeGroupAdult
}

// TreatmentType identifies the appliance or modality used for a case.
type TreatmentType string

const (
	TreatmentClearAligners   TreatmentType = "clear aligners"
	TreatmentTraditionalBraces TreatmentType = "traditional braces"
	TreatmentLingualBraces   TreatmentType = "lingual braces"
	TreatmentRetainers       TreatmentType = "retainers"
)

func (t TreatmentType) Valid() bool {
	switch t {
	case TreatmentClearAligners, TreatmentTraditionalBraces, TreatmentLingualBraces, TreatmentRetainers:
		return true
	}
	return false
}

// AreaTreated describes which arch(es) are under treatment.
type AreaTreated string

const (
	AreaUpper AreaTreated = "upper"
	AreaLower AreaTreated = "lower"
	AreaBoth  AreaTreated = "both"
)

func (a AreaTreated) Valid() bool {
	switch a {
	case AreaUpper, AreaLower, AreaBoth:
		return true
	}
	return false
}

// Arches is the insurance-summary analogue of AreaTreated; kept distinct
// because the two request schemas evolved independently upstream and may
// diverge again (e.g. "both" splitting into per-arch granularity).
type Arches string

const (
	ArchesUpper Arches = "upper"
	ArchesLower Arches = "lower"
	ArchesBoth  Arches = "both"
)

func (a Arches) Valid() bool {
	switch a {
	case ArchesUpper, ArchesLower, ArchesBoth:
		return true
	}
	return false
}

// CaseDifficulty describes the clinical complexity narrative, distinct
// from CaseTier which drives billing-code selection.
type CaseDifficulty string

const (
	DifficultySimple   CaseDifficulty = "simple"
	DifficultyModerate CaseDifficulty = "moderate"
	DifficultyComplex  CaseDifficulty = "complex"
)

func (d CaseDifficulty) Valid() bool {
	switch d {
	case DifficultySimple, DifficultyModerate, DifficultyComplex:
		return true
	}
	return false
}

// MonitoringApproach describes how the case is being supervised.
type MonitoringApproach string

const (
	MonitoringRemote   MonitoringApproach = "remote"
	MonitoringMixed    MonitoringApproach = "mixed"
	MonitoringInClinic MonitoringApproach = "in-clinic"
)

func (m MonitoringApproach) Valid() bool {
	switch m {
	case MonitoringRemote, MonitoringMixed, MonitoringInClinic:
		return true
	}
	return false
}

// Attachments describes the extent of bonded attachments used.
type Attachments string

const (
	AttachmentsNone     Attachments = "none"
	AttachmentsSome     Attachments = "some"
	AttachmentsExtensive Attachments = "extensive"
)

func (a Attachments) Valid() bool {
	switch a {
	case AttachmentsNone, AttachmentsSome, AttachmentsExtensive:
		return true
	}
	return false
}

// Audience controls the register of generated prose: patient-facing copy
// avoids clinical jargon, internal copy does not.
type Audience string

const (
	AudiencePatient  Audience = "patient"
	AudienceInternal Audience = "internal"
)

func (a Audience) Valid() bool {
	switch a {
	case AudiencePatient, AudienceInternal:
		return true
	}
	return false
}

// Tone controls the voice of generated prose.
type Tone string

const (
	ToneConcise     Tone = "concise"
	ToneCasual      Tone = "casual"
	ToneReassuring  Tone = "reassuring"
	ToneClinical    Tone = "clinical"
)

func (t Tone) Valid() bool {
	switch t {
	case ToneConcise, ToneCasual, ToneReassuring, ToneClinical:
		return true
	}
	return false
}

// InsuranceTier is the coarser three-bucket tier used specifically by the
// insurance-summary selection rules (express and mild share a bucket
// there, since insurers rarely distinguish between them).
type InsuranceTier string

const (
	InsuranceTierExpressMild InsuranceTier = "express_mild"
	InsuranceTierModerate    InsuranceTier = "moderate"
	InsuranceTierComplex     InsuranceTier = "complex"
)

func (t InsuranceTier) Valid() bool {
	switch t {
	case InsuranceTierExpressMild, InsuranceTierModerate, InsuranceTierComplex:
		return true
	}
	return false
}

// DocumentKind identifies which of the three generation pipelines produced
// a given AuditRecord.
type DocumentKind string

const (
	DocumentTreatmentSummary DocumentKind = "treatment_summary"
	DocumentInsuranceSummary DocumentKind = "insurance_summary"
	DocumentProgressNotes    DocumentKind = "progress_notes"
)

func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentTreatmentSummary, DocumentInsuranceSummary, DocumentProgressNotes:
		return true
	}
	return false
}

// ValidationError reports a single malformed request field. Handlers
// collect these and respond 422 Unprocessable Entity.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors is a non-empty collection of ValidationError, returned
// by request validators so a handler can report every malformed field at
// once instead of one at a time.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msg := e[0].Error()
	for _, extra := range e[1:] {
		msg += "; " + extra.Error()
	}
	return msg
}
