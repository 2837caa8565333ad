package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Markolissimo/treatment-summary/internal/platform/redact"
)

// ErrRegenerationMissingParent is returned when is_regeneration is true but
// no previous_version_uuid was supplied.
var ErrRegenerationMissingParent = errors.New("regeneration request missing previous_version_uuid")

// ErrParentNotFound is returned when previous_version_uuid does not refer
// to an existing record.
var ErrParentNotFound = errors.New("referenced parent generation does not exist")

type Service struct {
	repo   Repository
	policy redact.Policy
}

func NewService(repo Repository, policy redact.Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// AppendInput is the unredacted view of a generation attempt; Append
// applies the redaction policy to InputData/OutputData before persisting.
type AppendInput struct {
	UserID              string
	DocumentKind        string
	DocumentVersion     string
	InputData           map[string]any
	OutputData          map[string]any
	ModelUsed           string
	TokensUsed          *int
	GenerationTimeMS    *int
	Status              Status
	ErrorMessage        string
	Seed                int
	IsRegenerated       bool
	PreviousVersionUUID *uuid.UUID
	RequestIP           string
	RequestID           string
}

// Append redacts InputData/OutputData per policy and appends a new record.
// It is called on both the success and failure path — a failed generation
// still produces an audit record with status=error.
func (s *Service) Append(ctx context.Context, in AppendInput) (*Record, error) {
	inputJSON, err := s.policy.PrepareAuditData(in.InputData)
	if err != nil {
		return nil, fmt.Errorf("prepare input_data: %w", err)
	}
	outputJSON, err := s.policy.PrepareAuditData(in.OutputData)
	if err != nil {
		return nil, fmt.Errorf("prepare output_data: %w", err)
	}

	rec := &Record{
		UserID:              in.UserID,
		DocumentKind:        in.DocumentKind,
		DocumentVersion:     in.DocumentVersion,
		InputData:           inputJSON,
		OutputData:          outputJSON,
		ModelUsed:           in.ModelUsed,
		TokensUsed:          in.TokensUsed,
		GenerationTimeMS:    in.GenerationTimeMS,
		Status:              in.Status,
		ErrorMessage:        in.ErrorMessage,
		Seed:                in.Seed,
		IsRegenerated:       in.IsRegenerated,
		PreviousVersionUUID: in.PreviousVersionUUID,
		RequestIP:           in.RequestIP,
		RequestID:           in.RequestID,
	}
	return s.repo.Append(ctx, rec)
}

// ResolveSeed implements the §4.4 seed-resolution rule: a fresh generation
// starts at defaultSeed; a regeneration requires an existing parent of the
// same document_kind and user_id and takes parent.seed + 1 (I5, I6).
func (s *Service) ResolveSeed(ctx context.Context, documentKind, userID string, isRegeneration bool, previousVersionUUID *uuid.UUID, defaultSeed int) (int, error) {
	if !isRegeneration {
		return defaultSeed, nil
	}
	if previousVersionUUID == nil {
		return 0, ErrRegenerationMissingParent
	}
	parent, err := s.repo.GetByID(ctx, *previousVersionUUID)
	if err != nil {
		return 0, fmt.Errorf("look up parent generation: %w", err)
	}
	if parent == nil || parent.DocumentKind != documentKind || parent.UserID != userID {
		return 0, ErrParentNotFound
	}
	return parent.Seed + 1, nil
}
