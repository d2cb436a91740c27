package cron

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/alert"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/retry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	correctionService "github.com/cmlabs-hris/attendance-backend-go/internal/service/correction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testMorning = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	employee    = user.Identity{UserID: "user-1", EmployeeID: "emp-1", Role: user.RoleEmployee}
	admin       = user.Identity{UserID: "admin-1", Role: user.RoleAdmin}
)

func floatPtr(f float64) *float64 { return &f }

func setupJobs(t *testing.T) (*AttendanceJobs, attendance.AttendanceService, correction.CorrectionService, *clock.Mock) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	clk := clock.NewMock(testMorning)
	locker := keylock.New(time.Second)
	retrier := retry.Retrier{MaxTries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

	attSvc := attendanceService.NewAttendanceService(memory.NewAttendanceRepository(locker), attendance.DefaultPolicy(), clk, retrier, logger)
	corrSvc := correctionService.NewCorrectionService(
		memory.NewCorrectionRepository(locker), attSvc, alert.NewLogAlerter(logger), clk, retrier, correction.DefaultWindow, logger,
	)
	return NewAttendanceJobs(attSvc, corrSvc, logger), attSvc, corrSvc, clk
}

func checkIn(t *testing.T, svc attendance.AttendanceService, employeeID string) attendance.AttendanceResponse {
	t.Helper()
	resp, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: employeeID, Latitude: floatPtr(-6.2), Longitude: floatPtr(106.8),
	})
	require.NoError(t, err)
	return resp
}

// Test the sweeper flags forgotten check-outs
func TestAttendanceJobs_ReclassifyOpenSessions(t *testing.T) {
	jobs, attSvc, _, clk := setupJobs(t)
	ctx := context.Background()

	first := checkIn(t, attSvc, "emp-1")
	clk.Advance(5 * time.Hour)
	second := checkIn(t, attSvc, "emp-2")

	clk.Advance(10 * time.Hour)
	require.NoError(t, jobs.ReclassifyOpenSessions(ctx))

	att, err := attSvc.Get(ctx, admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusInvalid, att.Status)

	att, err = attSvc.Get(ctx, admin, second.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPending, att.Status)

	open, err := attSvc.ListOpenSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

// Test the sweeper expires stale requests and review afterwards sees them closed
func TestAttendanceJobs_ExpireStaleCorrections(t *testing.T) {
	jobs, attSvc, corrSvc, clk := setupJobs(t)
	ctx := context.Background()

	in := checkIn(t, attSvc, "emp-1")
	clk.Advance(30 * time.Minute)
	_, err := attSvc.CheckOut(ctx, attendance.CheckOutRequest{
		EmployeeID: "emp-1", Latitude: floatPtr(-6.2), Longitude: floatPtr(106.8),
	})
	require.NoError(t, err)

	out := testMorning.Add(8 * time.Hour).Format(time.RFC3339)
	created, err := corrSvc.Create(ctx, employee, correction.CreateCorrectionRequest{
		AttendanceID:      in.ID,
		RequestedCheckOut: &out,
		Reason:            "Forgot to check out",
	})
	require.NoError(t, err)

	// Nothing is due yet.
	require.NoError(t, jobs.ExpireStaleCorrections(ctx))
	pending, err := corrSvc.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	clk.Advance(49 * time.Hour)
	require.NoError(t, jobs.ExpireStaleCorrections(ctx))

	mine, err := corrSvc.ListMine(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, correction.StatusExpired, mine[0].Status)
	assert.Equal(t, 0.0, mine[0].HoursLeft)

	_, err = corrSvc.Approve(ctx, admin, created.ID)
	assert.ErrorIs(t, err, correction.ErrNotPending)
}

// Test jobs are registered on the scheduler
func TestAttendanceJobs_RegisterJobs(t *testing.T) {
	jobs, attSvc, _, clk := setupJobs(t)
	ctx := context.Background()

	in := checkIn(t, attSvc, "emp-1")
	clk.Advance(15 * time.Hour)

	scheduler := NewScheduler(slog.New(slog.DiscardHandler))
	jobs.RegisterJobs(scheduler, time.Minute)
	scheduler.RunOnce(ctx)

	att, err := attSvc.Get(ctx, admin, in.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusInvalid, att.Status)
}
