package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
)

// DateLayout is the calendar day key of a record.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// Source tells who produced a punch.
type Source string

const (
	SourceDevice     Source = "device"
	SourceCorrection Source = "correction"
)

type Punch struct {
	At       time.Time
	Location *geo.Point
	Source   Source
}

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       string
	CheckIn    *Punch
	CheckOut   *Punch
	TotalHours float64
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOpen reports whether the record has a check-in without a check-out.
func (a *Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

func (a *Attendance) IsComplete() bool {
	return a.CheckIn != nil && a.CheckOut != nil
}

// Recompute derives total hours and status from the punches.
// Every mutation of a record ends with a call to Recompute.
func (a *Attendance) Recompute(policy Policy, now time.Time) {
	a.TotalHours = 0
	if a.IsComplete() {
		a.TotalHours = TotalHours(a.CheckIn.At, a.CheckOut.At)
	}
	a.Status = Classify(a.Date, a.CheckIn, a.CheckOut, policy, now)
}

// TotalHours returns the shift length in hours, rounded to the minute.
func TotalHours(checkIn, checkOut time.Time) float64 {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return math.Round(d.Minutes()) / 60
}
