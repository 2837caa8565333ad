package selectionrule

import (
	"context"
	"errors"
	"fmt"

	"github.com/Markolissimo/treatment-summary/internal/domain/doctypes"
	"github.com/Markolissimo/treatment-summary/internal/domain/procedurecode"
)

// ErrCodeNotFound is returned when a rule references a procedure code
// that does not exist (invariant I3).
var ErrCodeNotFound = errors.New("referenced procedure code does not exist")

type Service struct {
	repo     Repository
	codeRepo procedurecode.Repository
}

func NewService(repo Repository, codeRepo procedurecode.Repository) *Service {
	return &Service{repo: repo, codeRepo: codeRepo}
}

func (s *Service) List(ctx context.Context) ([]*SelectionRule, error) {
	return s.repo.List(ctx)
}

func (s *Service) FindActive(ctx context.Context, tier, ageGroup string) ([]*SelectionRule, error) {
	return s.repo.FindActive(ctx, tier, ageGroup)
}

// Upsert validates invariants I2 and I3 and then writes the rule. I1
// (at most one active rule per pair) is enforced transactionally by the
// repository.
func (s *Service) Upsert(ctx context.Context, r *SelectionRule) error {
	if !doctypes.CaseTier(r.Tier).Valid() {
		return fmt.Errorf("invalid tier %q", r.Tier)
	}
	if !doctypes.AgeGroup(r.AgeGroup).Valid() || doctypes.AgeGroup(r.AgeGroup) == doctypes.AgeGroupUnknown {
		return fmt.Errorf("invalid age_group %q", r.AgeGroup)
	}

	code, err := s.codeRepo.GetByCode(ctx, r.Code)
	if err != nil || code == nil {
		return fmt.Errorf("%w: %s", ErrCodeNotFound, r.Code)
	}

	return s.repo.Upsert(ctx, r)
}
