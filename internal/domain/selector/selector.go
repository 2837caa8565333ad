// Package selector resolves a case's (tier, age_group) into the CDT
// procedure code it should be billed and documented against, following
// the rule-priority lookup the original orthodontic-documents service
// used to pick codes.
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
	"github.com/Markolissimo/treatment-summary/internal/domain/procedurecode"
	"github.com/Markolissimo/treatment-summary/internal/domain/selectionrule"
)

// ErrInsufficientInput is returned when neither age_group nor patient_age
// were supplied, so no age_group can be resolved.
var ErrInsufficientInput = errors.New("insufficient input: age_group or patient_age required")

// RuleNotFoundError reports that no active rule matches a (tier, age_group)
// pair.
type RuleNotFoundError struct {
	Tier     string
	AgeGroup string
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("no active selection rule for tier=%s, age_group=%s", e.Tier, e.AgeGroup)
}

// CodeInactiveError reports that a rule's referenced procedure code is
// missing or has been deactivated since the rule was written.
type CodeInactiveError struct {
	Code string
}

func (e *CodeInactiveError) Error() string {
	return fmt.Sprintf("procedure code %s is inactive or does not exist", e.Code)
}

// DiagnosticAssets flags which diagnostic materials were captured for a
// case. The fourth key, DiagnosticCasts, has no analogue in the original
// three-asset set but is handled identically: when true it adds D0470.
type DiagnosticAssets struct {
	IntraoralPhotos bool
	PanoramicXray   bool
	FMX             bool
	DiagnosticCasts bool
}

// diagnosticAssetCodes maps an asset flag to the CDT code it contributes
// to the insurance-summary add-on list.
var diagnosticAssetCodes = []struct {
	name string
	flag func(DiagnosticAssets) bool
	code string
}{
	{"intraoral_photos", func(a DiagnosticAssets) bool { return a.IntraoralPhotos }, "D0350"},
	{"panoramic_xray", func(a DiagnosticAssets) bool { return a.PanoramicXray }, "D0330"},
	{"fmx", func(a DiagnosticAssets) bool { return a.FMX }, "D0210"},
	{"diagnostic_casts", func(a DiagnosticAssets) bool { return a.DiagnosticCasts }, "D0470"},
}

// Input is the normalized set of attributes the selector needs. AgeGroup
// may be empty, in which case PatientAge is used to derive it.
type Input struct {
	Tier              string
	AgeGroup          string
	PatientAge        *int
	DiagnosticAssets  *DiagnosticAssets // nil for the treatment-summary flow
	RetainersIncluded bool
}

// AddOn is a single supplemental procedure code attached to the primary
// selection, e.g. a diagnostic imaging code.
type AddOn struct {
	Code        string
	Description string
}

// Result is what the selector hands back to a generation pipeline.
type Result struct {
	PrimaryCode        string
	PrimaryDescription string
	AddOns             []AddOn
	Notes              string
}

// Selector resolves cases against the selection_rules and procedure_codes
// tables.
type Selector struct {
	rules selectionrule.Repository
	codes procedurecode.Repository
}

func New(rules selectionrule.Repository, codes procedurecode.Repository) *Selector {
	return &Selector{rules: rules, codes: codes}
}

// Select runs the full selection algorithm: resolve the age group,
// normalize the tier, look up the highest-priority active rule, resolve
// its code, and append insurance diagnostic add-ons.
func (s *Selector) Select(ctx context.Context, in Input) (*Result, error) {
	ageGroup := strings.ToLower(strings.TrimSpace(in.AgeGroup))
	if ageGroup == "" {
		if in.PatientAge == nil {
			return nil, ErrInsufficientInput
		}
		ageGroup = string(doctypes.ResolveAgeGroup(in.PatientAge))
	}

	tier := normalizeTier(in.Tier)

	rules, err := s.rules.FindActive(ctx, tier, ageGroup)
	if err != nil {
		return nil, fmt.Errorf("query selection rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, &RuleNotFoundError{Tier: tier, AgeGroup: ageGroup}
	}
	rule := rules[0]

	code, err := s.codes.GetByCode(ctx, rule.Code)
	if err != nil || code == nil || !code.IsActive {
		return nil, &CodeInactiveError{Code: rule.Code}
	}

	result := &Result{
		PrimaryCode:        code.Code,
		PrimaryDescription: code.Description,
		Notes:              fmt.Sprintf("Selected based on tier=%s, age_group=%s", tier, ageGroup),
	}

	if in.DiagnosticAssets != nil {
		for _, asset := range diagnosticAssetCodes {
			if !asset.flag(*in.DiagnosticAssets) {
				continue
			}
			assetCode, err := s.codes.GetByCode(ctx, asset.code)
			if err != nil || assetCode == nil || !assetCode.IsActive {
				continue
			}
			result.AddOns = append(result.AddOns, AddOn{Code: assetCode.Code, Description: assetCode.Description})
		}
	}
	// Retainers are bundled into the primary code; D8680 is never added
	// as an add-on regardless of in.RetainersIncluded.

	return result, nil
}

// normalizeTier lowercases the tier and collapses the insurance-only
// express_mild bucket down to express for rule lookup purposes.
func normalizeTier(tier string) string {
	t := strings.ToLower(strings.TrimSpace(tier))
	if t == string(doctypes.InsuranceTierExpressMild) {
		return string(doctypes.CaseTierExpress)
	}
	return t
}
