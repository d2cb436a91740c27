package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

const pendingCorrectionIndex = "attendance_corrections_one_pending_idx"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS attendances (
		id                  UUID PRIMARY KEY,
		employee_id         TEXT NOT NULL,
		date                DATE NOT NULL,
		check_in_at         TIMESTAMPTZ,
		check_in_latitude   DOUBLE PRECISION,
		check_in_longitude  DOUBLE PRECISION,
		check_in_source     TEXT,
		check_out_at        TIMESTAMPTZ,
		check_out_latitude  DOUBLE PRECISION,
		check_out_longitude DOUBLE PRECISION,
		check_out_source    TEXT,
		total_hours         DOUBLE PRECISION NOT NULL DEFAULT 0,
		status              TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'valid', 'invalid')),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT attendances_employee_date_key UNIQUE (employee_id, date),
		CONSTRAINT attendances_check_out_after_check_in CHECK (check_out_at IS NULL OR check_out_at > check_in_at)
	)`,
	`CREATE INDEX IF NOT EXISTS attendances_open_idx ON attendances (check_in_at)
		WHERE check_out_at IS NULL AND status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS attendance_corrections (
		id                  UUID PRIMARY KEY,
		attendance_id       UUID NOT NULL REFERENCES attendances (id),
		employee_id         TEXT NOT NULL,
		requested_check_in  TIMESTAMPTZ,
		requested_check_out TIMESTAMPTZ,
		reason              TEXT NOT NULL CHECK (btrim(reason) <> ''),
		status              TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected', 'expired')),
		comments            TEXT,
		created_at          TIMESTAMPTZ NOT NULL,
		expires_at          TIMESTAMPTZ NOT NULL,
		reviewed_at         TIMESTAMPTZ,
		reviewed_by         TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + pendingCorrectionIndex + ` ON attendance_corrections (attendance_id)
		WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS attendance_corrections_due_idx ON attendance_corrections (expires_at)
		WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS attendance_corrections_employee_idx ON attendance_corrections (employee_id, created_at)`,
}

// Migrate creates the tables and indexes the repositories rely on. It is idempotent.
func Migrate(ctx context.Context, db *database.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
