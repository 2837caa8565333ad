package procedurecode

import "context"

// Repository persists and retrieves ProcedureCode records.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*ProcedureCode, error)
	List(ctx context.Context, activeOnly bool) ([]*ProcedureCode, error)
	Upsert(ctx context.Context, pc *ProcedureCode) error
	Deactivate(ctx context.Context, code string) error
	Count(ctx context.Context) (int, error)
}
