package gateway

import (
	"github.com/goliatone/go-errors"
)

// FailureKind is the closed set of failure shapes the gateway distinguishes
// when presenting errors to users.
type FailureKind string

const (
	KindAuthRequired FailureKind = "auth_required"
	KindAccessDenied FailureKind = "access_denied"
	KindNotFound     FailureKind = "not_found"
	KindOperation    FailureKind = "operation"
	KindUnknown      FailureKind = "unknown"
)

const (
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgNoPermission   = "You do not have permission to perform this action."
	msgNotFound       = "The requested resource was not found."
	msgFallback       = "An unexpected error occurred"
)

// ErrorClassifier maps heterogeneous failures to a FailureKind and a
// user-facing message. Construction is cheap; the zero value is not usable,
// use NewErrorClassifier.
type ErrorClassifier struct {
	logger Logger
}

// ClassifierOption customizes an ErrorClassifier.
type ClassifierOption func(*ErrorClassifier)

// WithClassifierLogger overrides the diagnostic logger.
func WithClassifierLogger(logger Logger) ClassifierOption {
	return func(ec *ErrorClassifier) {
		if logger != nil {
			ec.logger = logger
		}
	}
}

// NewErrorClassifier returns a classifier with the default logger.
func NewErrorClassifier(opts ...ClassifierOption) *ErrorClassifier {
	ec := &ErrorClassifier{logger: defLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(ec)
		}
	}
	return ec
}

// Classify resolves err to a FailureKind. First match wins: identity error
// kinds, then HTTP-like status codes, then generic, then unknown.
func (ec *ErrorClassifier) Classify(err error) FailureKind {
	if err == nil {
		return KindUnknown
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		switch richErr.Category {
		case errors.CategoryAuth:
			return KindAuthRequired
		case errors.CategoryAuthz:
			return KindAccessDenied
		}

		switch richErr.Code {
		case errors.CodeUnauthorized:
			return KindAuthRequired
		case errors.CodeForbidden:
			return KindAccessDenied
		case errors.CodeNotFound:
			return KindNotFound
		}
	}

	if err.Error() != "" {
		return KindOperation
	}

	return KindUnknown
}

// UserMessage resolves err to an actionable user-facing message. Never
// returns a raw stack trace or protocol-level error body.
func (ec *ErrorClassifier) UserMessage(err error) string {
	kind := ec.Classify(err)

	ec.logger.Debug("error classified", "kind", kind, "error", err)

	switch kind {
	case KindAuthRequired:
		return msgSessionExpired
	case KindAccessDenied:
		return msgNoPermission
	case KindNotFound:
		return msgNotFound
	case KindOperation:
		return err.Error()
	default:
		return msgFallback
	}
}
