package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/keylock"
)

type correctionRepositoryImpl struct {
	mu     sync.RWMutex
	byID   map[string]correction.Correction
	locker *keylock.Locker
}

func NewCorrectionRepository(locker *keylock.Locker) correction.CorrectionRepository {
	return &correctionRepositoryImpl{
		byID:   make(map[string]correction.Correction),
		locker: locker,
	}
}

func correctionKey(id string) string {
	return "correction:" + id
}

func pendingKey(attendanceID string) string {
	return "correction-pending:" + attendanceID
}

// Create implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) Create(ctx context.Context, c correction.Correction) error {
	unlock, err := r.locker.Lock(ctx, pendingKey(c.AttendanceID))
	if err != nil {
		return err
	}
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if c.IsPending() {
		for _, existing := range r.byID {
			if existing.AttendanceID == c.AttendanceID && existing.IsPending() {
				return correction.ErrDuplicatePending
			}
		}
	}
	r.byID[c.ID] = cloneCorrection(c)
	return nil
}

// GetByID implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) GetByID(ctx context.Context, id string) (correction.Correction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return correction.Correction{}, correction.ErrNotFound
	}
	return cloneCorrection(c), nil
}

// Mutate implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) Mutate(ctx context.Context, id string, fn func(ctx context.Context, c *correction.Correction) error) (correction.Correction, error) {
	unlock, err := r.locker.Lock(ctx, correctionKey(id))
	if err != nil {
		return correction.Correction{}, err
	}
	defer unlock()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return correction.Correction{}, err
	}

	if err := fn(ctx, &current); err != nil {
		return correction.Correction{}, err
	}

	current.ID = id
	r.mu.Lock()
	r.byID[id] = cloneCorrection(current)
	r.mu.Unlock()
	return current, nil
}

// ListPending implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) ListPending(ctx context.Context) ([]correction.Correction, error) {
	return r.filter(func(c correction.Correction) bool { return c.IsPending() }), nil
}

// ListDueForExpiry implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) ListDueForExpiry(ctx context.Context, now time.Time) ([]correction.Correction, error) {
	return r.filter(func(c correction.Correction) bool { return c.IsPending() && c.IsExpiredAt(now) }), nil
}

// ListByEmployee implements correction.CorrectionRepository.
func (r *correctionRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]correction.Correction, error) {
	return r.filter(func(c correction.Correction) bool { return c.EmployeeID == employeeID }), nil
}

func (r *correctionRepositoryImpl) filter(keep func(c correction.Correction) bool) []correction.Correction {
	r.mu.RLock()
	result := make([]correction.Correction, 0)
	for _, c := range r.byID {
		if keep(c) {
			result = append(result, cloneCorrection(c))
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func cloneCorrection(c correction.Correction) correction.Correction {
	c.RequestedCheckIn = cloneTime(c.RequestedCheckIn)
	c.RequestedCheckOut = cloneTime(c.RequestedCheckOut)
	c.ReviewedAt = cloneTime(c.ReviewedAt)
	if c.Comments != nil {
		s := *c.Comments
		c.Comments = &s
	}
	if c.ReviewedBy != nil {
		s := *c.ReviewedBy
		c.ReviewedBy = &s
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
