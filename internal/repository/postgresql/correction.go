package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const correctionColumns = `
	id::text, attendance_id::text, employee_id,
	requested_check_in, requested_check_out, reason, status, comments,
	created_at, expires_at, reviewed_at, reviewed_by`

type correctionRepository struct {
	db          *database.DB
	lockTimeout time.Duration
}

func NewCorrectionRepository(db *database.DB, lockTimeout time.Duration) correction.CorrectionRepository {
	return &correctionRepository{db: db, lockTimeout: lockTimeout}
}

func scanCorrection(row pgx.Row) (correction.Correction, error) {
	var (
		c      correction.Correction
		status string
	)
	err := row.Scan(
		&c.ID, &c.AttendanceID, &c.EmployeeID,
		&c.RequestedCheckIn, &c.RequestedCheckOut, &c.Reason, &status, &c.Comments,
		&c.CreatedAt, &c.ExpiresAt, &c.ReviewedAt, &c.ReviewedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.Correction{}, correction.ErrNotFound
		}
		return correction.Correction{}, mapError(err)
	}
	c.Status = correction.Status(status)
	return c, nil
}

// Create implements correction.CorrectionRepository.
func (r *correctionRepository) Create(ctx context.Context, c correction.Correction) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		INSERT INTO attendance_corrections (
			id, attendance_id, employee_id, requested_check_in, requested_check_out,
			reason, status, comments, created_at, expires_at, reviewed_at, reviewed_by
		) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.AttendanceID, c.EmployeeID, c.RequestedCheckIn, c.RequestedCheckOut,
		c.Reason, string(c.Status), c.Comments, c.CreatedAt, c.ExpiresAt, c.ReviewedAt, c.ReviewedBy,
	)
	if err != nil {
		if isUniqueViolation(err, pendingCorrectionIndex) {
			return correction.ErrDuplicatePending
		}
		return fmt.Errorf("failed to create correction: %w", mapError(err))
	}
	return nil
}

// GetByID implements correction.CorrectionRepository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.Correction, error) {
	q := GetQuerier(ctx, r.db)
	c, err := scanCorrection(q.QueryRow(ctx, `SELECT `+correctionColumns+` FROM attendance_corrections WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, correction.ErrNotFound) {
			return correction.Correction{}, err
		}
		return correction.Correction{}, fmt.Errorf("failed to get correction: %w", err)
	}
	return c, nil
}

// Mutate implements correction.CorrectionRepository. The row lock is held until fn's
// writes, including those made by other repositories through fn's ctx, are committed.
func (r *correctionRepository) Mutate(ctx context.Context, id string, fn func(ctx context.Context, c *correction.Correction) error) (correction.Correction, error) {
	var result correction.Correction
	err := inTx(ctx, r.db, r.lockTimeout, func(ctx context.Context, tx pgx.Tx) error {
		c, err := scanCorrection(tx.QueryRow(ctx, `SELECT `+correctionColumns+` FROM attendance_corrections WHERE id = $1::uuid FOR UPDATE`, id))
		if err != nil {
			return err
		}

		if err := fn(ctx, &c); err != nil {
			return err
		}
		c.ID = id

		_, err = tx.Exec(ctx, `
			UPDATE attendance_corrections SET
				requested_check_in = $2, requested_check_out = $3, reason = $4, status = $5,
				comments = $6, expires_at = $7, reviewed_at = $8, reviewed_by = $9
			WHERE id = $1::uuid`,
			c.ID, c.RequestedCheckIn, c.RequestedCheckOut, c.Reason, string(c.Status),
			c.Comments, c.ExpiresAt, c.ReviewedAt, c.ReviewedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update correction: %w", mapError(err))
		}
		result = c
		return nil
	})
	if err != nil {
		return correction.Correction{}, mapError(err)
	}
	return result, nil
}

// ListPending implements correction.CorrectionRepository.
func (r *correctionRepository) ListPending(ctx context.Context) ([]correction.Correction, error) {
	return r.list(ctx, `WHERE status = 'pending' ORDER BY created_at ASC, id ASC`)
}

// ListDueForExpiry implements correction.CorrectionRepository.
func (r *correctionRepository) ListDueForExpiry(ctx context.Context, now time.Time) ([]correction.Correction, error) {
	return r.list(ctx, `WHERE status = 'pending' AND expires_at <= $1 ORDER BY expires_at ASC`, now)
}

// ListByEmployee implements correction.CorrectionRepository.
func (r *correctionRepository) ListByEmployee(ctx context.Context, employeeID string) ([]correction.Correction, error) {
	return r.list(ctx, `WHERE employee_id = $1 ORDER BY created_at ASC, id ASC`, employeeID)
}

func (r *correctionRepository) list(ctx context.Context, clause string, args ...interface{}) ([]correction.Correction, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+correctionColumns+` FROM attendance_corrections `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	defer rows.Close()

	result := make([]correction.Correction, 0)
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}
	return result, nil
}
