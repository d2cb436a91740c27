package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
)

// Policy holds the rules a record is classified against.
type Policy struct {
	MinShift     time.Duration
	MaxShift     time.Duration
	MaxOpenShift time.Duration
	Location     *time.Location
	Geo          geo.Validator
}

func DefaultPolicy() Policy {
	return Policy{
		MinShift:     1 * time.Hour,
		MaxShift:     10 * time.Hour,
		MaxOpenShift: 14 * time.Hour,
		Location:     time.UTC,
		Geo:          geo.AllowAll{},
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// DateOf returns the calendar day t falls on in the policy time zone.
func (p Policy) DateOf(t time.Time) string {
	return t.In(p.location()).Format(DateLayout)
}

// DayOver reports whether date has fully elapsed at now.
func (p Policy) DayOver(date string, now time.Time) bool {
	day, err := time.ParseInLocation(DateLayout, date, p.location())
	if err != nil {
		return false
	}
	return !now.Before(day.AddDate(0, 0, 1))
}

// LocationAllowed reports whether a punch satisfies the geo policy.
// Punches written by an approved correction carry the reviewer's word and skip the check.
func (p Policy) LocationAllowed(punch *Punch) bool {
	if punch.Source == SourceCorrection {
		return true
	}
	if punch.Location == nil {
		return false
	}
	if p.Geo == nil {
		return punch.Location.Valid()
	}
	return p.Geo.Allows(*punch.Location)
}

// Classify computes a record's status from its facts. It is pure: same inputs, same status.
func Classify(date string, checkIn, checkOut *Punch, policy Policy, now time.Time) Status {
	if checkIn == nil {
		if policy.DayOver(date, now) {
			return StatusInvalid
		}
		return StatusPending
	}

	if checkOut == nil {
		if now.Sub(checkIn.At) > policy.MaxOpenShift {
			return StatusInvalid
		}
		return StatusPending
	}

	shift := checkOut.At.Sub(checkIn.At)
	if shift <= 0 || shift < policy.MinShift || shift > policy.MaxShift {
		return StatusInvalid
	}
	if !policy.LocationAllowed(checkIn) || !policy.LocationAllowed(checkOut) {
		return StatusInvalid
	}
	return StatusValid
}
