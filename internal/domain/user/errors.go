package user

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrInvalidToken           = apperr.New(apperr.KindUnauthorized, "INVALID_TOKEN", "invalid or expired token")
	ErrAdminPrivilegeRequired = apperr.New(apperr.KindForbidden, "ADMIN_REQUIRED", "admin privilege required")
	ErrEmployeeRequired       = apperr.New(apperr.KindForbidden, "EMPLOYEE_REQUIRED", "an employee account is required")
)
