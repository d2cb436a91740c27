package correction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/alert"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/retry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type CorrectionServiceImpl struct {
	correction.CorrectionRepository
	attendanceService attendance.AttendanceService
	alerter           alert.Alerter
	clock             clock.Clock
	retrier           retry.Retrier
	window            time.Duration
	logger            *slog.Logger
}

func NewCorrectionService(
	repo correction.CorrectionRepository,
	attendanceService attendance.AttendanceService,
	alerter alert.Alerter,
	clk clock.Clock,
	retrier retry.Retrier,
	window time.Duration,
	logger *slog.Logger,
) correction.CorrectionService {
	if logger == nil {
		logger = slog.Default()
	}
	if window <= 0 {
		window = correction.DefaultWindow
	}
	if alerter == nil {
		alerter = alert.NewLogAlerter(logger)
	}
	return &CorrectionServiceImpl{
		CorrectionRepository: repo,
		attendanceService:    attendanceService,
		alerter:              alerter,
		clock:                clk,
		retrier:              retrier,
		window:               window,
		logger:               logger,
	}
}

// Create implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Create(ctx context.Context, actor user.Identity, req correction.CreateCorrectionRequest) (resp correction.CorrectionResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "correction.Create",
		attribute.String("attendance_id", req.AttendanceID),
		attribute.String("employee_id", actor.EmployeeID),
	)
	defer func() { telemetry.End(span, err) }()

	if validator.IsEmpty(req.Reason) {
		return correction.CorrectionResponse{}, correction.ErrInvalidReason
	}
	if err := req.Validate(); err != nil {
		return correction.CorrectionResponse{}, err
	}
	checkIn, checkOut := req.Instants()

	// The record is reclassified and stays held until the request is stored.
	var c correction.Correction
	_, err = s.attendanceService.Hold(ctx, req.AttendanceID, func(ctx context.Context, record attendance.Attendance) error {
		if record.EmployeeID != actor.EmployeeID {
			return correction.ErrNotOwner
		}
		if record.Status != attendance.StatusInvalid {
			return correction.ErrRecordNotInvalid
		}
		if err := s.checkRequestedRange(record, checkIn, checkOut); err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate correction id: %w", err)
		}

		now := s.clock.Now()
		c = correction.Correction{
			ID:                id.String(),
			AttendanceID:      record.ID,
			EmployeeID:        actor.EmployeeID,
			RequestedCheckIn:  checkIn,
			RequestedCheckOut: checkOut,
			Reason:            req.Reason,
			Status:            correction.StatusPending,
			CreatedAt:         now,
			ExpiresAt:         now.Add(s.window),
		}
		return s.CorrectionRepository.Create(ctx, c)
	})
	if err != nil {
		return correction.CorrectionResponse{}, err
	}

	s.logger.InfoContext(ctx, "correction requested",
		slog.String("correction_id", c.ID),
		slog.String("attendance_id", c.AttendanceID),
		slog.String("employee_id", c.EmployeeID),
		slog.Time("expires_at", c.ExpiresAt),
	)
	return correction.NewCorrectionResponse(c, c.CreatedAt), nil
}

// checkRequestedRange rejects requests that could never be applied to the record.
func (s *CorrectionServiceImpl) checkRequestedRange(record attendance.Attendance, checkIn, checkOut *time.Time) error {
	policy := s.attendanceService.Policy()

	var errs validator.ValidationErrors
	if checkIn != nil && policy.DateOf(*checkIn) != record.Date {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_check_in",
			Message: "requested_check_in must fall on the attendance date " + record.Date,
		})
	}
	if len(errs) > 0 {
		return errs
	}

	var in, out *time.Time
	if record.CheckIn != nil {
		in = &record.CheckIn.At
	}
	if record.CheckOut != nil {
		out = &record.CheckOut.At
	}
	if checkIn != nil {
		in = checkIn
	}
	if checkOut != nil {
		out = checkOut
	}
	if out != nil && (in == nil || !out.After(*in)) {
		return correction.ErrInvalidRequestedRange
	}
	return nil
}

// Approve implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Approve(ctx context.Context, reviewer user.Identity, correctionID string) (resp correction.CorrectionResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "correction.Approve", attribute.String("correction_id", correctionID))
	defer func() { telemetry.End(span, err) }()

	var (
		updated correction.Correction
		expired bool
		now     time.Time
	)
	err = s.retrier.Do(ctx, func() error {
		var mutateErr error
		updated, mutateErr = s.CorrectionRepository.Mutate(ctx, correctionID, func(ctx context.Context, c *correction.Correction) error {
			expired = false
			now = s.clock.Now()
			if !c.IsPending() {
				return correction.ErrNotPending
			}
			if c.IsExpiredAt(now) {
				c.Status = correction.StatusExpired
				expired = true
				return nil
			}

			if _, err := s.attendanceService.ApplyCorrection(ctx, c.AttendanceID, c.RequestedCheckIn, c.RequestedCheckOut); err != nil {
				if apperr.IsRetryable(err) {
					return err
				}
				return fmt.Errorf("%w: %w", correction.ErrIntegrity, err)
			}

			reviewedBy := reviewer.Reviewer()
			c.Status = correction.StatusApproved
			c.ReviewedAt = &now
			c.ReviewedBy = &reviewedBy
			return nil
		})
		return mutateErr
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindIntegrity {
			s.raiseIntegrity(ctx, correctionID, reviewer, err)
		}
		return correction.CorrectionResponse{}, err
	}
	if expired {
		s.logger.InfoContext(ctx, "correction expired on approval", slog.String("correction_id", correctionID))
		return correction.CorrectionResponse{}, correction.ErrExpired
	}

	s.logger.InfoContext(ctx, "correction approved",
		slog.String("correction_id", updated.ID),
		slog.String("attendance_id", updated.AttendanceID),
		slog.String("reviewed_by", reviewer.Reviewer()),
	)
	return correction.NewCorrectionResponse(updated, now), nil
}

func (s *CorrectionServiceImpl) raiseIntegrity(ctx context.Context, correctionID string, reviewer user.Identity, cause error) {
	s.logger.ErrorContext(ctx, "approved correction could not be applied",
		slog.String("correction_id", correctionID),
		slog.String("reviewed_by", reviewer.Reviewer()),
		slog.Any("error", cause),
	)
	if err := s.alerter.Alert(ctx, alert.Alert{
		Type:     "correction_integrity",
		Severity: alert.SeverityCritical,
		Message:  "approved correction could not be applied to the attendance record",
		Attributes: map[string]string{
			"correction_id": correctionID,
			"reviewed_by":   reviewer.Reviewer(),
			"error":         cause.Error(),
		},
		OccurredAt: s.clock.Now(),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish integrity alert", slog.Any("error", err))
	}
}

// Reject implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Reject(ctx context.Context, reviewer user.Identity, correctionID string, req correction.RejectCorrectionRequest) (resp correction.CorrectionResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "correction.Reject", attribute.String("correction_id", correctionID))
	defer func() { telemetry.End(span, err) }()

	if validator.IsEmpty(req.Comments) {
		return correction.CorrectionResponse{}, correction.ErrInvalidComments
	}

	var (
		updated correction.Correction
		expired bool
		now     time.Time
	)
	err = s.retrier.Do(ctx, func() error {
		var mutateErr error
		updated, mutateErr = s.CorrectionRepository.Mutate(ctx, correctionID, func(ctx context.Context, c *correction.Correction) error {
			expired = false
			now = s.clock.Now()
			if !c.IsPending() {
				return correction.ErrNotPending
			}
			if c.IsExpiredAt(now) {
				c.Status = correction.StatusExpired
				expired = true
				return nil
			}

			reviewedBy := reviewer.Reviewer()
			comments := req.Comments
			c.Status = correction.StatusRejected
			c.Comments = &comments
			c.ReviewedAt = &now
			c.ReviewedBy = &reviewedBy
			return nil
		})
		return mutateErr
	})
	if err != nil {
		return correction.CorrectionResponse{}, err
	}
	if expired {
		return correction.CorrectionResponse{}, correction.ErrExpired
	}

	s.logger.InfoContext(ctx, "correction rejected",
		slog.String("correction_id", updated.ID),
		slog.String("reviewed_by", reviewer.Reviewer()),
	)
	return correction.NewCorrectionResponse(updated, now), nil
}

// Expire implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Expire(ctx context.Context, correctionID string) (bool, error) {
	var changed bool
	err := s.retrier.Do(ctx, func() error {
		_, mutateErr := s.CorrectionRepository.Mutate(ctx, correctionID, func(ctx context.Context, c *correction.Correction) error {
			changed = false
			if !c.IsPending() || !c.IsExpiredAt(s.clock.Now()) {
				return nil
			}
			c.Status = correction.StatusExpired
			changed = true
			return nil
		})
		return mutateErr
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// ListDueForExpiry implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListDueForExpiry(ctx context.Context) ([]correction.Correction, error) {
	return s.CorrectionRepository.ListDueForExpiry(ctx, s.clock.Now())
}

// ListPending implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListPending(ctx context.Context) ([]correction.CorrectionResponse, error) {
	items, err := s.CorrectionRepository.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending corrections: %w", err)
	}
	return s.toResponses(items), nil
}

// ListMine implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListMine(ctx context.Context, employeeID string) ([]correction.CorrectionResponse, error) {
	items, err := s.CorrectionRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	return s.toResponses(items), nil
}

func (s *CorrectionServiceImpl) toResponses(items []correction.Correction) []correction.CorrectionResponse {
	now := s.clock.Now()
	result := make([]correction.CorrectionResponse, 0, len(items))
	for _, c := range items {
		result = append(result, correction.NewCorrectionResponse(c, now))
	}
	return result
}
