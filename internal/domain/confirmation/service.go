package confirmation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Markolissimo/treatment-summary/internal/domain/audit"
	"github.com/Markolissimo/treatment-summary/internal/platform/redact"
)

var (
	// ErrGenerationNotFound is returned when generation_id does not refer
	// to an existing audit record.
	ErrGenerationNotFound = errors.New("referenced generation does not exist")
	// ErrGenerationNotSuccessful is returned when the referenced audit
	// record's status is not success.
	ErrGenerationNotSuccessful = errors.New("referenced generation did not succeed")
	// ErrAlreadyConfirmed is returned when a confirmation already exists
	// for generation_id.
	ErrAlreadyConfirmed = errors.New("generation has already been confirmed")
)

type Service struct {
	repo   Repository
	audit  *audit.Service
	policy redact.Policy
}

func NewService(repo Repository, auditSvc *audit.Service, policy redact.Policy) *Service {
	return &Service{repo: repo, audit: auditSvc, policy: policy}
}

// Confirm implements §4.6: verify the generation exists and succeeded,
// reject a duplicate confirmation, then persist a redacted payload.
func (s *Service) Confirm(ctx context.Context, generationID uuid.UUID, userID string, confirmedPayload map[string]any, notes string) (*Record, error) {
	gen, err := s.audit.GetByID(ctx, generationID)
	if err != nil {
		return nil, fmt.Errorf("look up generation: %w", err)
	}
	if gen == nil {
		return nil, ErrGenerationNotFound
	}
	if gen.Status != audit.StatusSuccess {
		return nil, ErrGenerationNotSuccessful
	}

	if existing, err := s.repo.GetByGenerationID(ctx, generationID); err != nil {
		return nil, fmt.Errorf("check existing confirmation: %w", err)
	} else if existing != nil {
		return nil, ErrAlreadyConfirmed
	}

	if confirmedPayload == nil {
		confirmedPayload = map[string]any{}
	}
	payloadJSON, err := s.policy.PrepareAuditData(confirmedPayload)
	if err != nil {
		return nil, fmt.Errorf("prepare confirmed payload: %w", err)
	}

	rec := &Record{
		GenerationID:     generationID,
		UserID:           userID,
		DocumentKind:     gen.DocumentKind,
		DocumentVersion:  gen.DocumentVersion,
		ConfirmedPayload: payloadJSON,
		Notes:            notes,
	}
	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrDuplicateGenerationID) {
			return nil, ErrAlreadyConfirmed
		}
		return nil, fmt.Errorf("create confirmation record: %w", err)
	}
	return created, nil
}

func (s *Service) IsConfirmed(ctx context.Context, generationID uuid.UUID) (bool, error) {
	rec, err := s.repo.GetByGenerationID(ctx, generationID)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

func (s *Service) Get(ctx context.Context, generationID uuid.UUID) (*Record, error) {
	return s.repo.GetByGenerationID(ctx, generationID)
}
