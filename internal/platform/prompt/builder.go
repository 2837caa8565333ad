package prompt

import (
	"fmt"
	"strings"

	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
)

// TreatmentSummaryInput carries the fields build_treatment_summary_user_prompt
// uses. PatientAge is a pointer so an absent age can be told apart from
// zero; the optional string fields (PatientName, PracticeName, DentistNote)
// count as absent when empty. Absent optional fields are omitted from the
// rendered prompt.
type TreatmentSummaryInput struct {
	PatientName        string
	PracticeName       string
	PatientAge         *int
	TreatmentType      doctypes.TreatmentType
	AreaTreated        doctypes.AreaTreated
	DurationRange      string
	CaseDifficulty     doctypes.CaseDifficulty
	MonitoringApproach doctypes.MonitoringApproach
	Attachments        doctypes.Attachments
	WhiteningIncluded  bool
	DentistNote        string
	Audience           doctypes.Audience
	Tone               doctypes.Tone
}

// BuildTreatmentSummaryUserPrompt renders the user prompt in the same
// field order and wording the upstream service used: a fixed preamble,
// optional identity fields, the age/category line, a run of required
// fields, an optional dentist note, and a closing audience/tone block.
func BuildTreatmentSummaryUserPrompt(in TreatmentSummaryInput) string {
	var parts []string
	parts = append(parts, "Generate a treatment summary with the following case details:", "")

	if in.PatientName != "" {
		parts = append(parts, fmt.Sprintf("**Patient Name:** %s", in.PatientName))
	}
	if in.PracticeName != "" {
		parts = append(parts, fmt.Sprintf("**Practice Name:** %s", in.PracticeName))
	}
	if in.PatientAge != nil {
		category := doctypes.ResolveAgeGroup(in.PatientAge)
		parts = append(parts, fmt.Sprintf("**Patient Age:** %d (%s)", *in.PatientAge, category))
	}

	parts = append(parts,
		fmt.Sprintf("**Treatment Type:** %s", in.TreatmentType),
		fmt.Sprintf("**Area Treated:** %s", in.AreaTreated),
		fmt.Sprintf("**Expected Duration:** %s", in.DurationRange),
		fmt.Sprintf("**Case Difficulty:** %s", in.CaseDifficulty),
		fmt.Sprintf("**Monitoring Approach:** %s", in.MonitoringApproach),
		fmt.Sprintf("**Attachments:** %s", in.Attachments),
		fmt.Sprintf("**Whitening Included:** %s", yesNo(in.WhiteningIncluded)),
	)

	if in.DentistNote != "" {
		parts = append(parts, fmt.Sprintf("**Dentist Note:** %s", in.DentistNote))
	}

	parts = append(parts,
		"",
		fmt.Sprintf("**Target Audience:** %s", in.Audience),
		fmt.Sprintf("**Desired Tone:** %s", in.Tone),
		"",
		"Please generate the treatment summary following all guidelines and restrictions.",
	)

	return strings.Join(parts, "\n")
}

// InsuranceSummaryInput carries the fields build_insurance_summary_user_prompt
// uses.
type InsuranceSummaryInput struct {
	Tier               doctypes.InsuranceTier
	Arches             doctypes.Arches
	AgeGroup           doctypes.AgeGroup
	RetainersIncluded  bool
	MonitoringApproach doctypes.MonitoringApproach
	IntraoralPhotos    bool
	PanoramicXray      bool
	FMX                bool
	DiagnosticCasts    bool
	Notes              string
}

// BuildInsuranceSummaryUserPrompt renders the insurance-summary user
// prompt. Diagnostic assets are always listed (Yes/No per asset, never
// omitted) and the closing block restates the conservative-language
// reminders the system prompt also states, matching the upstream
// builder's redundancy.
func BuildInsuranceSummaryUserPrompt(in InsuranceSummaryInput) string {
	var parts []string
	parts = append(parts,
		"Generate an insurance summary with the following case details:",
		"",
		fmt.Sprintf("**Tier:** %s", in.Tier),
		fmt.Sprintf("**Arches:** %s", in.Arches),
		fmt.Sprintf("**Age Group:** %s", in.AgeGroup),
		fmt.Sprintf("**Retainers Included:** %s", retainersLabel(in.RetainersIncluded)),
		fmt.Sprintf("**Monitoring Approach:** %s", in.MonitoringApproach),
		"",
		"**Diagnostic Assets:**",
		fmt.Sprintf("- Intraoral photos: %s", yesNo(in.IntraoralPhotos)),
		fmt.Sprintf("- Panoramic X-ray: %s", yesNo(in.PanoramicXray)),
		fmt.Sprintf("- FMX (Full Mouth X-rays): %s", yesNo(in.FMX)),
		fmt.Sprintf("- Diagnostic casts: %s", yesNo(in.DiagnosticCasts)),
	)

	if in.Notes != "" {
		parts = append(parts, "", fmt.Sprintf("**Additional Notes:** %s", in.Notes))
	}

	parts = append(parts,
		"",
		"Generate the insurance summary following all guidelines. Remember:",
		"- Use neutral, factual, non-promissory language",
		"- Do NOT include diagnosis language or medical necessity statements",
		"- Do NOT promise coverage or guarantee reimbursement",
		"- Do NOT include pricing information",
		"- Reference that this is for administrative/insurance documentation purposes",
		"- Mention retention is included if retainers are bundled",
	)

	return strings.Join(parts, "\n")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func retainersLabel(b bool) string {
	if b {
		return "Yes (bundled)"
	}
	return "No"
}
