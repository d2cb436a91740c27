package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (r *CheckInRequest) Validate() error {
	return validatePunch(r.EmployeeID, r.Latitude, r.Longitude)
}

func (r *CheckInRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type CheckOutRequest struct {
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (r *CheckOutRequest) Validate() error {
	return validatePunch(r.EmployeeID, r.Latitude, r.Longitude)
}

func (r *CheckOutRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

func validatePunch(employeeID string, lat, lon *float64) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if lat == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if *lat < -90 || *lat > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if lon == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if *lon < -180 || *lon > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceFilter struct {
	EmployeeID *string
	StartDate  *string
	EndDate    *string
	Status     *string
	Page       int
	Limit      int
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var hasStart, hasEnd bool
	if f.StartDate != nil {
		if start, hasStart = validator.IsValidDate(*f.StartDate); !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil {
		if end, hasEnd = validator.IsValidDate(*f.EndDate); !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if hasStart && hasEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	validStatuses := []string{string(StatusPending), string(StatusValid), string(StatusInvalid)}
	if f.Status != nil && !validator.IsInSlice(*f.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, valid, invalid",
		})
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Matches reports whether a satisfies every set field of the filter.
func (f AttendanceFilter) Matches(a Attendance) bool {
	if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.StartDate != nil && a.Date < *f.StartDate {
		return false
	}
	if f.EndDate != nil && a.Date > *f.EndDate {
		return false
	}
	if f.Status != nil && string(a.Status) != *f.Status {
		return false
	}
	return true
}

type PunchResponse struct {
	At        string   `json:"at"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Source    Source   `json:"source"`
}

type AttendanceResponse struct {
	ID         string         `json:"id"`
	EmployeeID string         `json:"employee_id"`
	Date       string         `json:"date"`
	CheckIn    *PunchResponse `json:"check_in"`
	CheckOut   *PunchResponse `json:"check_out"`
	TotalHours float64        `json:"total_hours"`
	Status     Status         `json:"status"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
}

type ListAttendanceResponse struct {
	Items      []AttendanceResponse `json:"items"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date,
		CheckIn:    newPunchResponse(a.CheckIn),
		CheckOut:   newPunchResponse(a.CheckOut),
		TotalHours: a.TotalHours,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}

func newPunchResponse(p *Punch) *PunchResponse {
	if p == nil {
		return nil
	}
	resp := &PunchResponse{
		At:     p.At.Format(time.RFC3339),
		Source: p.Source,
	}
	if p.Location != nil {
		lat, lon := p.Location.Latitude, p.Location.Longitude
		resp.Latitude = &lat
		resp.Longitude = &lon
	}
	return resp
}
