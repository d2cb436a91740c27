package correction

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateCorrectionRequest struct {
	AttendanceID      string  `json:"attendance_id"`
	RequestedCheckIn  *string `json:"requested_check_in"`
	RequestedCheckOut *string `json:"requested_check_out"`
	Reason            string  `json:"reason"`

	checkIn  *time.Time
	checkOut *time.Time
}

// Validate checks the shape of the request and parses the requested instants.
// An empty reason is reported separately as ErrInvalidReason.
func (r *CreateCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	} else if !validator.IsValidUUID(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id must be a valid UUID",
		})
	}

	if r.RequestedCheckIn == nil && r.RequestedCheckOut == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_check_in",
			Message: "at least one of requested_check_in or requested_check_out is required",
		})
	}

	if r.RequestedCheckIn != nil {
		t, ok := validator.IsValidDateTime(*r.RequestedCheckIn)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_check_in",
				Message: "requested_check_in must be an RFC3339 timestamp",
			})
		} else {
			r.checkIn = &t
		}
	}

	if r.RequestedCheckOut != nil {
		t, ok := validator.IsValidDateTime(*r.RequestedCheckOut)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_check_out",
				Message: "requested_check_out must be an RFC3339 timestamp",
			})
		} else {
			r.checkOut = &t
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Instants returns the parsed requested punches. Valid after Validate succeeded.
func (r *CreateCorrectionRequest) Instants() (checkIn, checkOut *time.Time) {
	return r.checkIn, r.checkOut
}

type RejectCorrectionRequest struct {
	Comments string `json:"comments"`
}

type CorrectionResponse struct {
	ID                string  `json:"id"`
	AttendanceID      string  `json:"attendance_id"`
	EmployeeID        string  `json:"employee_id"`
	RequestedCheckIn  *string `json:"requested_check_in"`
	RequestedCheckOut *string `json:"requested_check_out"`
	Reason            string  `json:"reason"`
	Status            Status  `json:"status"`
	Comments          *string `json:"comments,omitempty"`
	CreatedAt         string  `json:"created_at"`
	ExpiresAt         string  `json:"expires_at"`
	HoursLeft         float64 `json:"hours_left"`
	ReviewedAt        *string `json:"reviewed_at,omitempty"`
	ReviewedBy        *string `json:"reviewed_by,omitempty"`
}

func NewCorrectionResponse(c Correction, now time.Time) CorrectionResponse {
	return CorrectionResponse{
		ID:                c.ID,
		AttendanceID:      c.AttendanceID,
		EmployeeID:        c.EmployeeID,
		RequestedCheckIn:  timePtrToString(c.RequestedCheckIn),
		RequestedCheckOut: timePtrToString(c.RequestedCheckOut),
		Reason:            c.Reason,
		Status:            c.Status,
		Comments:          c.Comments,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
		ExpiresAt:         c.ExpiresAt.Format(time.RFC3339),
		HoursLeft:         c.HoursLeft(now),
		ReviewedAt:        timePtrToString(c.ReviewedAt),
		ReviewedBy:        c.ReviewedBy,
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
