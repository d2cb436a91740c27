package apperr

import "errors"

// Kind classifies an error by how a caller is expected to react to it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindConcurrency
	KindIntegrity
	KindNotFound
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindConcurrency:
		return "concurrency"
	case KindIntegrity:
		return "integrity"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a domain error carrying a stable machine readable code.
// Domain packages declare their sentinels with New and compare them with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// ErrLockTimeout is returned by stores when exclusive access to a record
// could not be obtained in time. Nothing was changed; the call may be retried.
var ErrLockTimeout = New(KindConcurrency, "LOCK_TIMEOUT", "record is busy, please retry")

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error found in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable reports whether err is transient and safe to retry automatically.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == KindConcurrency
}
