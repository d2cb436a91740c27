package attendance

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn = apperr.New(apperr.KindConflict, "ALREADY_CHECKED_IN", "you have already checked in today")
	ErrDuplicateDay     = apperr.New(apperr.KindConflict, "DUPLICATE_DAY", "today's attendance is already complete")
	ErrNoOpenSession    = apperr.New(apperr.KindConflict, "NO_OPEN_SESSION", "you have not checked in today")
	ErrInvalidTimeRange = apperr.New(apperr.KindConflict, "INVALID_TIME_RANGE", "check-out must be after check-in")

	// General errors
	ErrAttendanceNotFound = apperr.New(apperr.KindNotFound, "ATTENDANCE_NOT_FOUND", "attendance record not found")
	ErrUnauthorized       = apperr.New(apperr.KindForbidden, "ATTENDANCE_FORBIDDEN", "unauthorized to access this attendance record")
)
