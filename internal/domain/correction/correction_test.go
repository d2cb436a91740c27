package correction

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

const testAttendanceID = "0190b6b2-3c4d-7e8f-9a0b-1c2d3e4f5a6b"

func TestCorrection_Expiry(t *testing.T) {
	created := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	c := Correction{Status: StatusPending, CreatedAt: created, ExpiresAt: created.Add(DefaultWindow)}

	assert.False(t, c.IsExpiredAt(created.Add(47*time.Hour)))
	assert.True(t, c.IsExpiredAt(created.Add(48*time.Hour)))
	assert.True(t, c.IsExpiredAt(created.Add(49*time.Hour)))

	assert.Equal(t, 12.0, c.HoursLeft(created.Add(36*time.Hour)))
	assert.Equal(t, 0.0, c.HoursLeft(created.Add(50*time.Hour)))

	c.Status = StatusRejected
	assert.Equal(t, 0.0, c.HoursLeft(created))
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}

func TestCreateCorrectionRequest_Validate(t *testing.T) {
	req := CreateCorrectionRequest{
		AttendanceID:      testAttendanceID,
		RequestedCheckIn:  strPtr("2024-03-04T09:00:00Z"),
		RequestedCheckOut: strPtr("2024-03-04T17:00:00+07:00"),
		Reason:            "Phone died",
	}
	require.NoError(t, req.Validate())

	in, out := req.Instants()
	require.NotNil(t, in)
	require.NotNil(t, out)
	assert.Equal(t, 9, in.Hour())
	assert.True(t, out.Equal(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)))

	tests := []struct {
		name  string
		req   CreateCorrectionRequest
		field string
	}{
		{"missing attendance", CreateCorrectionRequest{RequestedCheckIn: strPtr("2024-03-04T09:00:00Z")}, "attendance_id"},
		{"malformed attendance", CreateCorrectionRequest{AttendanceID: "abc", RequestedCheckIn: strPtr("2024-03-04T09:00:00Z")}, "attendance_id"},
		{"nothing requested", CreateCorrectionRequest{AttendanceID: testAttendanceID}, "requested_check_in"},
		{"bad check-out", CreateCorrectionRequest{AttendanceID: testAttendanceID, RequestedCheckOut: strPtr("5pm")}, "requested_check_out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
}

func TestNewCorrectionResponse(t *testing.T) {
	created := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	in := created.Add(-time.Hour)
	c := Correction{
		ID:               "c-1",
		AttendanceID:     "a-1",
		EmployeeID:       "e-1",
		RequestedCheckIn: &in,
		Reason:           "forgot",
		Status:           StatusPending,
		CreatedAt:        created,
		ExpiresAt:        created.Add(DefaultWindow),
	}

	resp := NewCorrectionResponse(c, created.Add(6*time.Hour))
	assert.Equal(t, 42.0, resp.HoursLeft)
	require.NotNil(t, resp.RequestedCheckIn)
	assert.Equal(t, "2024-03-04T09:00:00Z", *resp.RequestedCheckIn)
	assert.Nil(t, resp.RequestedCheckOut)
	assert.Nil(t, resp.ReviewedAt)
	assert.Equal(t, "2024-03-06T10:00:00Z", resp.ExpiresAt)
}
