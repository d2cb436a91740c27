package correction

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrInvalidReason         = apperr.New(apperr.KindValidation, "INVALID_REASON", "reason is required")
	ErrInvalidComments       = apperr.New(apperr.KindValidation, "INVALID_COMMENTS", "comments are required when rejecting")
	ErrInvalidRequestedRange = apperr.New(apperr.KindValidation, "INVALID_REQUESTED_RANGE", "requested check-out must be after check-in")
	ErrRecordNotInvalid      = apperr.New(apperr.KindConflict, "RECORD_NOT_INVALID", "only invalid attendance records can be corrected")
	ErrDuplicatePending      = apperr.New(apperr.KindConflict, "DUPLICATE_PENDING", "a pending correction already exists for this record")
	ErrNotPending            = apperr.New(apperr.KindConflict, "NOT_PENDING", "correction already processed")
	ErrExpired               = apperr.New(apperr.KindConflict, "CORRECTION_EXPIRED", "correction request has expired")
	ErrNotOwner              = apperr.New(apperr.KindForbidden, "NOT_OWNER", "you can only correct your own attendance")
	ErrNotFound              = apperr.New(apperr.KindNotFound, "CORRECTION_NOT_FOUND", "correction request not found")
	// ErrIntegrity marks an approval whose attendance patch failed. The request stays pending.
	ErrIntegrity = apperr.New(apperr.KindIntegrity, "CORRECTION_INTEGRITY", "approved correction could not be applied to the attendance record")
)
