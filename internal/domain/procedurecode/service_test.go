package procedurecode

import (
	"context"
	"testing"
)

type fakeRepo struct {
	codes map[string]*ProcedureCode
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{codes: map[string]*ProcedureCode{}}
}

func (f *fakeRepo) GetByCode(ctx context.Context, code string) (*ProcedureCode, error) {
	pc, ok := f.codes[code]
	if !ok {
		return nil, nil
	}
	return pc, nil
}

func (f *fakeRepo) List(ctx context.Context, activeOnly bool) ([]*ProcedureCode, error) {
	var out []*ProcedureCode
	for _, pc := range f.codes {
		if activeOnly && !pc.IsActive {
			continue
		}
		out = append(out, pc)
	}
	return out, nil
}

func (f *fakeRepo) Upsert(ctx context.Context, pc *ProcedureCode) error {
	cp := *pc
	f.codes[cp.Code] = &cp
	return nil
}

func (f *fakeRepo) Deactivate(ctx context.Context, code string) error {
	pc, ok := f.codes[code]
	if !ok {
		return nil
	}
	pc.IsActive = false
	return nil
}

func (f *fakeRepo) Count(ctx context.Context) (int, error) {
	return len(f.codes), nil
}

func TestSeed_IsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	codes := []*ProcedureCode{
		{Code: "D8010", Description: "Limited orthodontic treatment", IsPrimary: true, IsActive: true},
		{Code: "D0330", Description: "Panoramic radiographic image", IsActive: true},
	}

	if err := svc.Seed(context.Background(), codes); err != nil {
		t.Fatalf("first Seed() error = %v", err)
	}
	if err := svc.Seed(context.Background(), codes); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	count, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestSeed_UpsertOverwritesExistingEntry(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	if err := svc.Seed(context.Background(), []*ProcedureCode{
		{Code: "D8010", Description: "old description", IsActive: true},
	}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if err := svc.Seed(context.Background(), []*ProcedureCode{
		{Code: "D8010", Description: "new description", IsActive: true},
	}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	pc, err := svc.Get(context.Background(), "D8010")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pc.Description != "new description" {
		t.Errorf("Description = %q, want %q", pc.Description, "new description")
	}
}

func TestList_ActiveOnlyExcludesDeactivatedCodes(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_ = svc.Seed(context.Background(), []*ProcedureCode{
		{Code: "D8010", IsActive: true},
		{Code: "D8680", IsActive: true},
	})
	if err := repo.Deactivate(context.Background(), "D8680"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	active, err := svc.List(context.Background(), true)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(active) != 1 || active[0].Code != "D8010" {
		t.Errorf("List(activeOnly=true) = %v, want only D8010", active)
	}

	all, err := svc.List(context.Background(), false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(activeOnly=false) returned %d codes, want 2", len(all))
	}
}
