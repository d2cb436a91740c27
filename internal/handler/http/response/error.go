package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	appErr, ok := apperr.As(err)
	if !ok {
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		Error(w, http.StatusBadRequest, appErr.Code, appErr.Message, nil)
	case apperr.KindConflict:
		Error(w, http.StatusConflict, appErr.Code, appErr.Message, nil)
	case apperr.KindNotFound:
		Error(w, http.StatusNotFound, appErr.Code, appErr.Message, nil)
	case apperr.KindForbidden:
		Error(w, http.StatusForbidden, appErr.Code, appErr.Message, nil)
	case apperr.KindUnauthorized:
		Error(w, http.StatusUnauthorized, appErr.Code, appErr.Message, nil)
	case apperr.KindConcurrency:
		w.Header().Set("Retry-After", "1")
		Error(w, http.StatusServiceUnavailable, appErr.Code, appErr.Message, map[string]string{"retryable": "true"})
	case apperr.KindIntegrity:
		slog.Error("integrity failure", "error", err)
		Error(w, http.StatusInternalServerError, appErr.Code, appErr.Message, nil)
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
