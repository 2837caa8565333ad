package confirmation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Markolissimo/treatment-summary/internal/domain/audit"
	"github.com/Markolissimo/treatment-summary/internal/platform/redact"
)

type fakeRepo struct {
	byGenID map[uuid.UUID]*Record
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byGenID: map[uuid.UUID]*Record{}}
}

func (f *fakeRepo) Create(ctx context.Context, r *Record) (*Record, error) {
	if _, exists := f.byGenID[r.GenerationID]; exists {
		return nil, ErrDuplicateGenerationID
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	f.byGenID[cp.GenerationID] = &cp
	return &cp, nil
}

func (f *fakeRepo) GetByGenerationID(ctx context.Context, generationID uuid.UUID) (*Record, error) {
	r, ok := f.byGenID[generationID]
	if !ok {
		return nil, nil
	}
	return r, nil
}

type fakeAuditRepo struct {
	records map[uuid.UUID]*audit.Record
}

func (f *fakeAuditRepo) Append(ctx context.Context, r *audit.Record) (*audit.Record, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	f.records[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeAuditRepo) GetByID(ctx context.Context, id uuid.UUID) (*audit.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (f *fakeAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*audit.Record, int, error) {
	return nil, 0, nil
}

func TestConfirm_GenerationNotFound(t *testing.T) {
	auditSvc := audit.NewService(&fakeAuditRepo{records: map[uuid.UUID]*audit.Record{}}, redact.Policy{})
	svc := NewService(newFakeRepo(), auditSvc, redact.Policy{})

	_, err := svc.Confirm(context.Background(), uuid.New(), "u1", nil, "")
	if !errors.Is(err, ErrGenerationNotFound) {
		t.Errorf("error = %v, want ErrGenerationNotFound", err)
	}
}

func TestConfirm_GenerationNotSuccessful(t *testing.T) {
	auditRepo := &fakeAuditRepo{records: map[uuid.UUID]*audit.Record{}}
	auditSvc := audit.NewService(auditRepo, redact.Policy{})
	gen, _ := auditRepo.Append(context.Background(), &audit.Record{UserID: "u1", DocumentKind: "treatment_summary", Status: audit.StatusError})

	svc := NewService(newFakeRepo(), auditSvc, redact.Policy{})
	_, err := svc.Confirm(context.Background(), gen.ID, "u1", nil, "")
	if !errors.Is(err, ErrGenerationNotSuccessful) {
		t.Errorf("error = %v, want ErrGenerationNotSuccessful", err)
	}
}

func TestConfirm_SecondAttemptAlreadyConfirmed(t *testing.T) {
	auditRepo := &fakeAuditRepo{records: map[uuid.UUID]*audit.Record{}}
	auditSvc := audit.NewService(auditRepo, redact.Policy{})
	gen, _ := auditRepo.Append(context.Background(), &audit.Record{UserID: "u1", DocumentKind: "treatment_summary", Status: audit.StatusSuccess})

	svc := NewService(newFakeRepo(), auditSvc, redact.Policy{})

	if _, err := svc.Confirm(context.Background(), gen.ID, "u1", nil, ""); err != nil {
		t.Fatalf("first Confirm() error = %v", err)
	}
	_, err := svc.Confirm(context.Background(), gen.ID, "u1", nil, "")
	if !errors.Is(err, ErrAlreadyConfirmed) {
		t.Errorf("error = %v, want ErrAlreadyConfirmed", err)
	}
}

func TestConfirm_NilPayloadStoresEmptyObject(t *testing.T) {
	auditRepo := &fakeAuditRepo{records: map[uuid.UUID]*audit.Record{}}
	auditSvc := audit.NewService(auditRepo, redact.Policy{})
	gen, _ := auditRepo.Append(context.Background(), &audit.Record{UserID: "u1", DocumentKind: "treatment_summary", Status: audit.StatusSuccess})

	svc := NewService(newFakeRepo(), auditSvc, redact.Policy{StoreFullAuditData: true})
	rec, err := svc.Confirm(context.Background(), gen.ID, "u1", nil, "")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if rec.ConfirmedPayload != "{}" {
		t.Errorf("ConfirmedPayload = %q, want {}", rec.ConfirmedPayload)
	}
}
