package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCheckInRequest_Validate(t *testing.T) {
	req := CheckInRequest{EmployeeID: "e-1", Latitude: ptr(-6.2), Longitude: ptr(106.8)}
	assert.NoError(t, req.Validate())
	assert.Equal(t, -6.2, req.Point().Latitude)

	req = CheckInRequest{Latitude: ptr(91.0)}
	err := req.Validate()
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "longitude")
}

func TestAttendanceFilter_Validate(t *testing.T) {
	f := AttendanceFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	tests := []struct {
		name   string
		filter AttendanceFilter
		field  string
	}{
		{"bad start date", AttendanceFilter{StartDate: ptr("04-03-2024")}, "start_date"},
		{"end before start", AttendanceFilter{StartDate: ptr("2024-03-05"), EndDate: ptr("2024-03-04")}, "end_date"},
		{"unknown status", AttendanceFilter{Status: ptr("late")}, "status"},
		{"limit too high", AttendanceFilter{Limit: 101}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
}

func TestAttendanceFilter_Matches(t *testing.T) {
	att := Attendance{EmployeeID: "e-1", Date: "2024-03-04", Status: StatusValid}

	assert.True(t, AttendanceFilter{}.Matches(att))
	assert.True(t, AttendanceFilter{EmployeeID: ptr("e-1"), StartDate: ptr("2024-03-04"), EndDate: ptr("2024-03-04")}.Matches(att))
	assert.False(t, AttendanceFilter{EmployeeID: ptr("e-2")}.Matches(att))
	assert.False(t, AttendanceFilter{StartDate: ptr("2024-03-05")}.Matches(att))
	assert.False(t, AttendanceFilter{EndDate: ptr("2024-03-03")}.Matches(att))
	assert.False(t, AttendanceFilter{Status: ptr("invalid")}.Matches(att))
}

func TestNewAttendanceResponse(t *testing.T) {
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	att := Attendance{
		ID:         "a-1",
		EmployeeID: "e-1",
		Date:       "2024-03-04",
		CheckIn:    devicePunch(in),
		CheckOut:   &Punch{At: in.Add(8 * time.Hour), Source: SourceCorrection},
		TotalHours: 8,
		Status:     StatusValid,
		CreatedAt:  in,
		UpdatedAt:  in,
	}

	resp := NewAttendanceResponse(att)
	require.NotNil(t, resp.CheckIn)
	assert.Equal(t, "2024-03-04T09:00:00Z", resp.CheckIn.At)
	assert.Equal(t, -6.2, *resp.CheckIn.Latitude)
	require.NotNil(t, resp.CheckOut)
	assert.Nil(t, resp.CheckOut.Latitude)
	assert.Equal(t, SourceCorrection, resp.CheckOut.Source)
}
