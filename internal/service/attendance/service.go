package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/retry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

var errUnchanged = errors.New("attendance unchanged")

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	policy  attendance.Policy
	clock   clock.Clock
	retrier retry.Retrier
	logger  *slog.Logger
}

func NewAttendanceService(
	repo attendance.AttendanceRepository,
	policy attendance.Policy,
	clk clock.Clock,
	retrier retry.Retrier,
	logger *slog.Logger,
) attendance.AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: repo,
		policy:               policy,
		clock:                clk,
		retrier:              retrier,
		logger:               logger,
	}
}

// Policy implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Policy() attendance.Policy {
	return a.policy
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (resp attendance.AttendanceResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "attendance.CheckIn", attribute.String("employee_id", req.EmployeeID))
	defer func() { telemetry.End(span, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()
	date := a.policy.DateOf(now)
	location := req.Point()

	var result attendance.Attendance
	err = a.retrier.Do(ctx, func() error {
		var mutateErr error
		result, mutateErr = a.AttendanceRepository.MutateDay(ctx, req.EmployeeID, date, func(att *attendance.Attendance, exists bool) error {
			if exists && att.IsOpen() {
				return attendance.ErrAlreadyCheckedIn
			}
			if exists && att.IsComplete() {
				return attendance.ErrDuplicateDay
			}

			if att.ID == "" {
				id, err := uuid.NewV7()
				if err != nil {
					return fmt.Errorf("failed to generate attendance id: %w", err)
				}
				att.ID = id.String()
			}
			if att.CreatedAt.IsZero() {
				att.CreatedAt = now
			}
			att.EmployeeID = req.EmployeeID
			att.Date = date
			att.CheckIn = &attendance.Punch{At: now, Location: &location, Source: attendance.SourceDevice}
			att.CheckOut = nil
			att.UpdatedAt = now
			att.Recompute(a.policy, now)
			return nil
		})
		return mutateErr
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.logger.InfoContext(ctx, "employee checked in",
		slog.String("employee_id", result.EmployeeID),
		slog.String("attendance_id", result.ID),
		slog.String("date", result.Date),
		slog.String("status", string(result.Status)),
	)
	return attendance.NewAttendanceResponse(result), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (resp attendance.AttendanceResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "attendance.CheckOut", attribute.String("employee_id", req.EmployeeID))
	defer func() { telemetry.End(span, err) }()

	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()
	date := a.policy.DateOf(now)
	location := req.Point()

	var result attendance.Attendance
	err = a.retrier.Do(ctx, func() error {
		var mutateErr error
		result, mutateErr = a.AttendanceRepository.MutateDay(ctx, req.EmployeeID, date, func(att *attendance.Attendance, exists bool) error {
			if !exists || !att.IsOpen() {
				return attendance.ErrNoOpenSession
			}
			if !now.After(att.CheckIn.At) {
				return attendance.ErrInvalidTimeRange
			}

			att.CheckOut = &attendance.Punch{At: now, Location: &location, Source: attendance.SourceDevice}
			att.UpdatedAt = now
			att.Recompute(a.policy, now)
			return nil
		})
		return mutateErr
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.logger.InfoContext(ctx, "employee checked out",
		slog.String("employee_id", result.EmployeeID),
		slog.String("attendance_id", result.ID),
		slog.Float64("total_hours", result.TotalHours),
		slog.String("status", string(result.Status)),
	)
	return attendance.NewAttendanceResponse(result), nil
}

// ApplyCorrection implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ApplyCorrection(ctx context.Context, attendanceID string, checkIn, checkOut *time.Time) (result attendance.Attendance, err error) {
	ctx, span := telemetry.StartSpan(ctx, "attendance.ApplyCorrection", attribute.String("attendance_id", attendanceID))
	defer func() { telemetry.End(span, err) }()

	// Not retried here; ctx may carry the caller's transaction.
	now := a.clock.Now()
	result, err = a.AttendanceRepository.Mutate(ctx, attendanceID, func(ctx context.Context, att *attendance.Attendance) error {
		in := att.CheckIn
		if checkIn != nil {
			in = correctedPunch(att.CheckIn, *checkIn)
		}
		out := att.CheckOut
		if checkOut != nil {
			out = correctedPunch(att.CheckOut, *checkOut)
		}

		if out != nil && (in == nil || !out.At.After(in.At)) {
			return attendance.ErrInvalidTimeRange
		}

		att.CheckIn = in
		att.CheckOut = out
		att.UpdatedAt = now
		att.Recompute(a.policy, now)
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return result, nil
}

// correctedPunch keeps the recorded location and marks the instant as reviewer supplied.
func correctedPunch(current *attendance.Punch, at time.Time) *attendance.Punch {
	p := &attendance.Punch{At: at, Source: attendance.SourceCorrection}
	if current != nil && current.Location != nil {
		loc := *current.Location
		p.Location = &loc
	}
	return p
}

// Reclassify implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Reclassify(ctx context.Context, attendanceID string) (attendance.Attendance, error) {
	now := a.clock.Now()

	var result attendance.Attendance
	err := a.retrier.Do(ctx, func() error {
		var mutateErr error
		_, mutateErr = a.AttendanceRepository.Mutate(ctx, attendanceID, func(ctx context.Context, att *attendance.Attendance) error {
			previous := att.Status
			att.Recompute(a.policy, now)
			result = *att
			if att.Status == previous {
				return errUnchanged
			}
			att.UpdatedAt = now
			result.UpdatedAt = now
			return nil
		})
		return mutateErr
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return attendance.Attendance{}, err
	}
	if err == nil {
		a.logger.InfoContext(ctx, "attendance reclassified",
			slog.String("attendance_id", result.ID),
			slog.String("status", string(result.Status)),
		)
	}
	return result, nil
}

// Hold implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Hold(ctx context.Context, attendanceID string, fn func(ctx context.Context, att attendance.Attendance) error) (result attendance.Attendance, err error) {
	ctx, span := telemetry.StartSpan(ctx, "attendance.Hold", attribute.String("attendance_id", attendanceID))
	defer func() { telemetry.End(span, err) }()

	err = a.retrier.Do(ctx, func() error {
		now := a.clock.Now()
		var mutateErr error
		result, mutateErr = a.AttendanceRepository.Mutate(ctx, attendanceID, func(ctx context.Context, att *attendance.Attendance) error {
			previous := att.Status
			att.Recompute(a.policy, now)
			if att.Status != previous {
				att.UpdatedAt = now
			}
			return fn(ctx, *att)
		})
		return mutateErr
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return result, nil
}

// Get implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Get(ctx context.Context, actor user.Identity, attendanceID string) (attendance.Attendance, error) {
	att, err := a.AttendanceRepository.GetByID(ctx, attendanceID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if !actor.IsAdmin() && att.EmployeeID != actor.EmployeeID {
		return attendance.Attendance{}, attendance.ErrUnauthorized
	}
	return att, nil
}

// List implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	items := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		items = append(items, attendance.NewAttendanceResponse(r))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return attendance.ListAttendanceResponse{
		Items:      items,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListOpenSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListOpenSessions(ctx context.Context) ([]attendance.Attendance, error) {
	return a.AttendanceRepository.ListOpenSessions(ctx)
}
