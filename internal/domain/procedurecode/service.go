package procedurecode

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, code string) (*ProcedureCode, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*ProcedureCode, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Seed idempotently upserts the canonical procedure code set; re-running
// it is safe and is how the docgen-server seed command populates a fresh
// database.
func (s *Service) Seed(ctx context.Context, codes []*ProcedureCode) error {
	for _, pc := range codes {
		if err := s.repo.Upsert(ctx, pc); err != nil {
			return fmt.Errorf("upsert procedure code %s: %w", pc.Code, err)
		}
	}
	return nil
}
