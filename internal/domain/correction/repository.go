package correction

import (
	"context"
	"time"
)

type CorrectionRepository interface {
	// Create stores c. ErrDuplicatePending when c's record already has a pending request.
	Create(ctx context.Context, c Correction) error
	GetByID(ctx context.Context, id string) (Correction, error)
	// Mutate gives fn exclusive access to the request. The ctx passed to fn carries any
	// transaction the store opened, so writes made through it commit or roll back together.
	Mutate(ctx context.Context, id string, fn func(ctx context.Context, c *Correction) error) (Correction, error)
	ListPending(ctx context.Context) ([]Correction, error)
	ListDueForExpiry(ctx context.Context, now time.Time) ([]Correction, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Correction, error)
}
