package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
)

// AttendanceJobs keeps stored state consistent with the clock: stale corrections
// are expired and ageing open sessions are reclassified.
type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	correctionSvc correction.CorrectionService
	logger        *slog.Logger
}

func NewAttendanceJobs(
	attendanceSvc attendance.AttendanceService,
	correctionSvc correction.CorrectionService,
	logger *slog.Logger,
) *AttendanceJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		correctionSvc: correctionSvc,
		logger:        logger,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("expire_stale_corrections", interval, j.ExpireStaleCorrections)
	scheduler.AddJob("reclassify_open_sessions", interval, j.ReclassifyOpenSessions)
}

// ExpireStaleCorrections expires every pending correction past its window.
// A failure on one request is logged and does not stop the pass.
func (j *AttendanceJobs) ExpireStaleCorrections(ctx context.Context) error {
	due, err := j.correctionSvc.ListDueForExpiry(ctx)
	if err != nil {
		return fmt.Errorf("failed to list corrections due for expiry: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	var failed []error
	expiredCount := 0
	for _, c := range due {
		changed, err := j.correctionSvc.Expire(ctx, c.ID)
		if err != nil {
			j.logger.Error("Cron: failed to expire correction", "correction_id", c.ID, "error", err)
			failed = append(failed, err)
			continue
		}
		if changed {
			expiredCount++
		}
	}

	j.logger.Info("Cron: expired stale corrections", "due", len(due), "expired", expiredCount, "failed", len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d corrections failed to expire: %w", len(failed), len(due), errors.Join(failed...))
	}
	return nil
}

// ReclassifyOpenSessions flags sessions that have been open longer than the policy allows.
func (j *AttendanceJobs) ReclassifyOpenSessions(ctx context.Context) error {
	open, err := j.attendanceSvc.ListOpenSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open sessions: %w", err)
	}

	var failed []error
	invalidated := 0
	for _, att := range open {
		updated, err := j.attendanceSvc.Reclassify(ctx, att.ID)
		if err != nil {
			j.logger.Error("Cron: failed to reclassify attendance", "attendance_id", att.ID, "error", err)
			failed = append(failed, err)
			continue
		}
		if updated.Status == attendance.StatusInvalid {
			invalidated++
		}
	}

	if invalidated > 0 || len(failed) > 0 {
		j.logger.Info("Cron: reclassified open sessions", "open", len(open), "invalidated", invalidated, "failed", len(failed))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d sessions failed to reclassify: %w", len(failed), len(open), errors.Join(failed...))
	}
	return nil
}
