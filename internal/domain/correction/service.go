package correction

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type CorrectionService interface {
	Create(ctx context.Context, actor user.Identity, req CreateCorrectionRequest) (CorrectionResponse, error)
	Approve(ctx context.Context, reviewer user.Identity, correctionID string) (CorrectionResponse, error)
	Reject(ctx context.Context, reviewer user.Identity, correctionID string, req RejectCorrectionRequest) (CorrectionResponse, error)

	// Expire closes a pending request whose window has passed. It reports whether anything changed.
	Expire(ctx context.Context, correctionID string) (bool, error)
	ListDueForExpiry(ctx context.Context) ([]Correction, error)

	ListPending(ctx context.Context) ([]CorrectionResponse, error)
	ListMine(ctx context.Context, employeeID string) ([]CorrectionResponse, error)
}
