package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id::text, employee_id, to_char(date, 'YYYY-MM-DD'),
	check_in_at, check_in_latitude, check_in_longitude, check_in_source,
	check_out_at, check_out_latitude, check_out_longitude, check_out_source,
	total_hours, status, created_at, updated_at`

type attendanceRepository struct {
	db          *database.DB
	lockTimeout time.Duration
}

func NewAttendanceRepository(db *database.DB, lockTimeout time.Duration) attendance.AttendanceRepository {
	return &attendanceRepository{db: db, lockTimeout: lockTimeout}
}

type punchColumns struct {
	At        *time.Time
	Latitude  *float64
	Longitude *float64
	Source    *string
}

func (p punchColumns) toPunch() *attendance.Punch {
	if p.At == nil {
		return nil
	}
	punch := &attendance.Punch{At: *p.At, Source: attendance.SourceDevice}
	if p.Source != nil {
		punch.Source = attendance.Source(*p.Source)
	}
	if p.Latitude != nil && p.Longitude != nil {
		punch.Location = &geo.Point{Latitude: *p.Latitude, Longitude: *p.Longitude}
	}
	return punch
}

func fromPunch(p *attendance.Punch) punchColumns {
	if p == nil {
		return punchColumns{}
	}
	at := p.At
	source := string(p.Source)
	cols := punchColumns{At: &at, Source: &source}
	if p.Location != nil {
		lat, lon := p.Location.Latitude, p.Location.Longitude
		cols.Latitude, cols.Longitude = &lat, &lon
	}
	return cols
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att     attendance.Attendance
		in, out punchColumns
		status  string
	)
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date,
		&in.At, &in.Latitude, &in.Longitude, &in.Source,
		&out.At, &out.Latitude, &out.Longitude, &out.Source,
		&att.TotalHours, &status, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, mapError(err)
	}
	att.CheckIn = in.toPunch()
	att.CheckOut = out.toPunch()
	att.Status = attendance.Status(status)
	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1::uuid`
	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, err
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND date = $2::date`
	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, err
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.EmployeeID != nil {
		add("employee_id = $%d", *filter.EmployeeID)
	}
	if filter.StartDate != nil {
		add("date >= $%d::date", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("date <= $%d::date", *filter.EndDate)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM attendances%s ORDER BY date DESC, employee_id ASC LIMIT $%d OFFSET $%d`,
		attendanceColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	records, err := collectAttendance(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListOpenSessions implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenSessions(ctx context.Context) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendances
		WHERE check_in_at IS NOT NULL AND check_out_at IS NULL AND status = 'pending'
		ORDER BY check_in_at ASC`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	return collectAttendance(rows)
}

func collectAttendance(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}
	return records, nil
}

// MutateDay implements attendance.AttendanceRepository.
// A placeholder row is inserted first so concurrent callers for the same day queue on its row lock.
// The placeholder is rolled back together with everything else when fn fails.
func (a *attendanceRepository) MutateDay(ctx context.Context, employeeID, date string, fn func(att *attendance.Attendance, exists bool) error) (attendance.Attendance, error) {
	var result attendance.Attendance
	err := inTx(ctx, a.db, a.lockTimeout, func(ctx context.Context, tx pgx.Tx) error {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate attendance id: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO attendances (id, employee_id, date, status)
			VALUES ($1::uuid, $2, $3::date, 'pending')
			ON CONFLICT (employee_id, date) DO NOTHING`,
			id.String(), employeeID, date,
		)
		if err != nil {
			return fmt.Errorf("failed to reserve attendance day: %w", mapError(err))
		}
		created := tag.RowsAffected() == 1

		query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND date = $2::date FOR UPDATE`
		att, err := scanAttendance(tx.QueryRow(ctx, query, employeeID, date))
		if err != nil {
			return err
		}
		if created {
			att.CreatedAt = time.Time{}
		}

		if err := fn(&att, !created); err != nil {
			return err
		}

		if err := a.update(ctx, tx, att); err != nil {
			return err
		}
		result = att
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, mapError(err)
	}
	return result, nil
}

// Mutate implements attendance.AttendanceRepository.
func (a *attendanceRepository) Mutate(ctx context.Context, id string, fn attendance.MutateFunc) (attendance.Attendance, error) {
	var result attendance.Attendance
	err := inTx(ctx, a.db, a.lockTimeout, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1::uuid FOR UPDATE`
		att, err := scanAttendance(tx.QueryRow(ctx, query, id))
		if err != nil {
			return err
		}
		original := att

		if err := fn(ctx, &att); err != nil {
			return err
		}
		att.ID, att.EmployeeID, att.Date = original.ID, original.EmployeeID, original.Date

		if err := a.update(ctx, tx, att); err != nil {
			return err
		}
		result = att
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, mapError(err)
	}
	return result, nil
}

func (a *attendanceRepository) update(ctx context.Context, tx pgx.Tx, att attendance.Attendance) error {
	in, out := fromPunch(att.CheckIn), fromPunch(att.CheckOut)
	_, err := tx.Exec(ctx, `
		UPDATE attendances SET
			check_in_at = $2, check_in_latitude = $3, check_in_longitude = $4, check_in_source = $5,
			check_out_at = $6, check_out_latitude = $7, check_out_longitude = $8, check_out_source = $9,
			total_hours = $10, status = $11, created_at = $12, updated_at = $13
		WHERE id = $1::uuid`,
		att.ID,
		in.At, in.Latitude, in.Longitude, in.Source,
		out.At, out.Latitude, out.Longitude, out.Source,
		att.TotalHours, string(att.Status), att.CreatedAt, att.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", mapError(err))
	}
	return nil
}
