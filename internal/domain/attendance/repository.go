package attendance

import "context"

// MutateFunc edits a record in place while the store holds exclusive access to it.
// ctx carries the store's transaction, if any. Returning an error discards the edit.
type MutateFunc func(ctx context.Context, att *Attendance) error

type AttendanceRepository interface {
	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
	// ListOpenSessions returns records checked in, not checked out, and still pending.
	ListOpenSessions(ctx context.Context) ([]Attendance, error)

	// MutateDay gives fn exclusive access to the record keyed by (employeeID, date).
	// exists is false when no record was stored yet; fn then fills a fresh one.
	MutateDay(ctx context.Context, employeeID, date string, fn func(att *Attendance, exists bool) error) (Attendance, error)
	// Mutate gives fn exclusive access to an existing record. ErrAttendanceNotFound when missing.
	Mutate(ctx context.Context, id string, fn MutateFunc) (Attendance, error)
}
