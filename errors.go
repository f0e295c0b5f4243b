package gateway

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	textCodeNoSession           = "NO_SESSION"
	textCodeAuthRequired        = "AUTH_REQUIRED"
	textCodeAccessDenied        = "ACCESS_DENIED"
	textCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	textCodeAuditSinkFailure    = "AUDIT_SINK_FAILURE"
)

// ErrNoSession is returned when a credential resolves to no valid session.
var ErrNoSession = errors.New("no valid session", errors.CategoryAuth).
	WithTextCode(textCodeNoSession).
	WithCode(errors.CodeUnauthorized)

// ErrAuthRequired is returned when a protected operation ran without a valid
// session. Recovered by redirecting to sign-in, never surfaced as a 5xx.
var ErrAuthRequired = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(textCodeAuthRequired).
	WithCode(errors.CodeUnauthorized)

// ErrAccessDenied is returned when a valid session lacks privilege.
// Surfaced as a rejection, not a redirect.
var ErrAccessDenied = errors.New("access denied", errors.CategoryAuthz).
	WithTextCode(textCodeAccessDenied).
	WithCode(errors.CodeForbidden)

// ErrProviderUnavailable is returned when the identity provider could not be
// reached. The gate treats it as "no session" (fail closed) but it carries a
// distinct text code so operators can tell outages from bad credentials.
var ErrProviderUnavailable = errors.New("identity provider unavailable", errors.CategoryOperation).
	WithTextCode(textCodeProviderUnavailable).
	WithCode(errors.CodeUnauthorized)

// ErrAuditSinkFailure wraps sink write failures. Swallowed by the auditor,
// logged, never surfaced to callers.
var ErrAuditSinkFailure = errors.New("audit sink write failed", errors.CategoryOperation).
	WithTextCode(textCodeAuditSinkFailure)

// IsAuthRequiredError reports whether err carries an "unauthorized" signal:
// a categorized auth error, a 401-equivalent code, or a duck-typed message
// from an HTTP client layer we do not control.
func IsAuthRequiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		if richErr.Category == errors.CategoryAuth {
			return true
		}
		if richErr.Code == errors.CodeUnauthorized {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "status 401")
}

// IsAccessDeniedError reports whether err represents a privilege rejection.
func IsAccessDeniedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Category == errors.CategoryAuthz || richErr.Code == errors.CodeForbidden
	}
	return false
}

// IsProviderUnavailableError reports whether err came from an unreachable
// identity provider rather than a rejected credential.
func IsProviderUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == textCodeProviderUnavailable
	}
	return false
}
