package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// ApplyCorrection overwrites the given punches. A nil instant keeps the current value.
	ApplyCorrection(ctx context.Context, attendanceID string, checkIn, checkOut *time.Time) (Attendance, error)
	// Reclassify re-runs classification against the current time and stores any change.
	Reclassify(ctx context.Context, attendanceID string) (Attendance, error)
	// Hold reclassifies the record and runs fn while the record stays exclusively held.
	// An error from fn discards the reclassification.
	Hold(ctx context.Context, attendanceID string, fn func(ctx context.Context, att Attendance) error) (Attendance, error)

	Get(ctx context.Context, actor user.Identity, attendanceID string) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	ListOpenSessions(ctx context.Context) ([]Attendance, error)
	Policy() Policy
}
