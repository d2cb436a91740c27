package correction

import "time"

// DefaultWindow is how long a request stays open for review.
const DefaultWindow = 48 * time.Hour

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

// Correction is an employee's request to replace the punches of an invalid attendance record.
type Correction struct {
	ID                string
	AttendanceID      string
	EmployeeID        string
	RequestedCheckIn  *time.Time
	RequestedCheckOut *time.Time
	Reason            string
	Status            Status
	Comments          *string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	ReviewedAt        *time.Time
	ReviewedBy        *string
}

func (c *Correction) IsPending() bool {
	return c.Status == StatusPending
}

// IsExpiredAt reports whether the review window has closed at now.
func (c *Correction) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// HoursLeft is a display hint only; expiry itself is decided by IsExpiredAt.
func (c *Correction) HoursLeft(now time.Time) float64 {
	if !c.IsPending() {
		return 0
	}
	left := c.ExpiresAt.Sub(now).Hours()
	if left < 0 {
		return 0
	}
	return left
}
