package selector

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/Markolissimo/treatment-summary/internal/domain/procedurecode"
	"github.com/Markolissimo/treatment-summary/internal/domain/selectionrule"
)

type fakeRuleRepo struct {
	rules []*selectionrule.SelectionRule
}

func (f *fakeRuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*selectionrule.SelectionRule, error) {
	return nil, nil
}

func (f *fakeRuleRepo) FindActive(ctx context.Context, tier, ageGroup string) ([]*selectionrule.SelectionRule, error) {
	var out []*selectionrule.SelectionRule
	for _, r := range f.rules {
		if r.IsActive && r.Tier == tier && r.AgeGroup == ageGroup {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (f *fakeRuleRepo) List(ctx context.Context) ([]*selectionrule.SelectionRule, error) {
	return f.rules, nil
}

func (f *fakeRuleRepo) Upsert(ctx context.Context, r *selectionrule.SelectionRule) error {
	return nil
}

type fakeCodeRepo struct {
	codes map[string]*procedurecode.ProcedureCode
}

func (f *fakeCodeRepo) GetByCode(ctx context.Context, code string) (*procedurecode.ProcedureCode, error) {
	pc, ok := f.codes[code]
	if !ok {
		return nil, nil
	}
	return pc, nil
}

func (f *fakeCodeRepo) List(ctx context.Context, activeOnly bool) ([]*procedurecode.ProcedureCode, error) {
	return nil, nil
}

func (f *fakeCodeRepo) Upsert(ctx context.Context, pc *procedurecode.ProcedureCode) error {
	return nil
}

func (f *fakeCodeRepo) Deactivate(ctx context.Context, code string) error {
	return nil
}

func (f *fakeCodeRepo) Count(ctx context.Context) (int, error) {
	return len(f.codes), nil
}

func newTestSelector() (*Selector, *fakeRuleRepo, *fakeCodeRepo) {
	codes := &fakeCodeRepo{codes: map[string]*procedurecode.ProcedureCode{
		"D8010": {Code: "D8010", Description: "Limited orthodontic treatment", IsActive: true},
		"D8080": {Code: "D8080", Description: "Comprehensive orthodontic treatment, adolescent", IsActive: true},
		"D0330": {Code: "D0330", Description: "Panoramic radiographic image", IsActive: true},
		"D0350": {Code: "D0350", Description: "Oral/facial photographic images", IsActive: true},
		"D0470": {Code: "D0470", Description: "Diagnostic casts", IsActive: true},
		"D8680": {Code: "D8680", Description: "Orthodontic retention", IsActive: true},
	}}
	rules := &fakeRuleRepo{rules: []*selectionrule.SelectionRule{
		{Tier: "express", AgeGroup: "adult", Code: "D8010", Priority: 100, IsActive: true},
		{Tier: "moderate", AgeGroup: "adolescent", Code: "D8080", Priority: 90, IsActive: true},
	}}
	return New(rules, codes), rules, codes
}

func TestSelect_ResolvesAgeGroupFromPatientAge(t *testing.T) {
	sel, _, _ := newTestSelector()
	age := 16

	result, err := sel.Select(context.Background(), Input{Tier: "moderate", PatientAge: &age})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if result.PrimaryCode != "D8080" {
		t.Errorf("PrimaryCode = %q, want D8080", result.PrimaryCode)
	}
}

func TestSelect_NormalizesInsuranceExpressMildTierToExpress(t *testing.T) {
	sel, _, _ := newTestSelector()

	result, err := sel.Select(context.Background(), Input{Tier: "express_mild", AgeGroup: "adult"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if result.PrimaryCode != "D8010" {
		t.Errorf("PrimaryCode = %q, want D8010", result.PrimaryCode)
	}
}

func TestSelect_NoAgeGroupOrPatientAgeErrors(t *testing.T) {
	sel, _, _ := newTestSelector()

	_, err := sel.Select(context.Background(), Input{Tier: "express"})
	if !errors.Is(err, ErrInsufficientInput) {
		t.Errorf("error = %v, want ErrInsufficientInput", err)
	}
}

func TestSelect_NoActiveRuleReturnsRuleNotFoundError(t *testing.T) {
	sel, _, _ := newTestSelector()

	_, err := sel.Select(context.Background(), Input{Tier: "complex", AgeGroup: "adult"})
	var notFound *RuleNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error = %v, want *RuleNotFoundError", err)
	}
}

func TestSelect_DeactivatedCodeReturnsCodeInactiveError(t *testing.T) {
	sel, _, codes := newTestSelector()
	codes.codes["D8010"].IsActive = false

	_, err := sel.Select(context.Background(), Input{Tier: "express", AgeGroup: "adult"})
	var inactive *CodeInactiveError
	if !errors.As(err, &inactive) {
		t.Errorf("error = %v, want *CodeInactiveError", err)
	}
}

func TestSelect_DiagnosticAddOnsOrderedByAssetTable(t *testing.T) {
	sel, _, _ := newTestSelector()

	result, err := sel.Select(context.Background(), Input{
		Tier:     "express",
		AgeGroup: "adult",
		DiagnosticAssets: &DiagnosticAssets{
			PanoramicXray:   true,
			IntraoralPhotos: true,
			DiagnosticCasts: true,
		},
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(result.AddOns) != 3 {
		t.Fatalf("AddOns = %v, want 3 entries", result.AddOns)
	}
	want := []string{"D0350", "D0330", "D0470"}
	for i, code := range want {
		if result.AddOns[i].Code != code {
			t.Errorf("AddOns[%d].Code = %q, want %q", i, result.AddOns[i].Code, code)
		}
	}
}

func TestSelect_RetainersNeverAddedAsAddOn(t *testing.T) {
	sel, _, _ := newTestSelector()

	result, err := sel.Select(context.Background(), Input{
		Tier:              "express",
		AgeGroup:          "adult",
		RetainersIncluded: true,
		DiagnosticAssets:  &DiagnosticAssets{},
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	for _, a := range result.AddOns {
		if a.Code == "D8680" {
			t.Error("AddOns contains D8680, retainers must be bundled into the primary code")
		}
	}
}
