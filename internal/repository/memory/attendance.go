package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/keylock"
)

type attendanceRepositoryImpl struct {
	mu     sync.RWMutex
	byID   map[string]attendance.Attendance
	byDay  map[string]string
	locker *keylock.Locker
}

// NewAttendanceRepository returns a process-local store. Writes to one (employee, date)
// are serialized through locker; all other records proceed in parallel.
func NewAttendanceRepository(locker *keylock.Locker) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{
		byID:   make(map[string]attendance.Attendance),
		byDay:  make(map[string]string),
		locker: locker,
	}
}

func dayKey(employeeID, date string) string {
	return "attendance:" + employeeID + "|" + date
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	att, ok := r.byID[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return clone(att), nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byDay[dayKey(employeeID, date)]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return clone(r.byID[id]), nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.mu.RLock()
	matched := make([]attendance.Attendance, 0)
	for _, att := range r.byID {
		if filter.Matches(att) {
			matched = append(matched, clone(att))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})

	total := int64(len(matched))
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []attendance.Attendance{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// ListOpenSessions implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListOpenSessions(ctx context.Context) ([]attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	open := make([]attendance.Attendance, 0)
	for _, att := range r.byID {
		if att.IsOpen() && att.Status == attendance.StatusPending {
			open = append(open, clone(att))
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CheckIn.At.Before(open[j].CheckIn.At) })
	return open, nil
}

// MutateDay implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) MutateDay(ctx context.Context, employeeID, date string, fn func(att *attendance.Attendance, exists bool) error) (attendance.Attendance, error) {
	unlock, err := r.locker.Lock(ctx, dayKey(employeeID, date))
	if err != nil {
		return attendance.Attendance{}, err
	}
	defer unlock()

	current, err := r.GetByEmployeeAndDate(ctx, employeeID, date)
	exists := err == nil
	if !exists {
		current = attendance.Attendance{EmployeeID: employeeID, Date: date}
	}

	if err := fn(&current, exists); err != nil {
		return attendance.Attendance{}, err
	}

	r.store(current)
	return clone(current), nil
}

// Mutate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Mutate(ctx context.Context, id string, fn attendance.MutateFunc) (attendance.Attendance, error) {
	// The day key never changes for a record, so it is safe to read before locking.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, err
	}

	unlock, err := r.locker.Lock(ctx, dayKey(existing.EmployeeID, existing.Date))
	if err != nil {
		return attendance.Attendance{}, err
	}
	defer unlock()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, err
	}

	if err := fn(ctx, &current); err != nil {
		return attendance.Attendance{}, err
	}

	// Identity fields are owned by the store.
	current.ID, current.EmployeeID, current.Date = existing.ID, existing.EmployeeID, existing.Date
	r.store(current)
	return clone(current), nil
}

func (r *attendanceRepositoryImpl) store(att attendance.Attendance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[att.ID] = clone(att)
	r.byDay[dayKey(att.EmployeeID, att.Date)] = att.ID
}

func clone(att attendance.Attendance) attendance.Attendance {
	att.CheckIn = clonePunch(att.CheckIn)
	att.CheckOut = clonePunch(att.CheckOut)
	return att
}

func clonePunch(p *attendance.Punch) *attendance.Punch {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Location != nil {
		loc := *p.Location
		cp.Location = &loc
	}
	return &cp
}
