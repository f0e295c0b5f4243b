package gateway

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/sony/gobreaker"
)

// SessionValidator resolves request credentials through a SessionProvider
// with an explicit timeout and fail-closed semantics: a timeout, an open
// breaker, or any provider error all resolve to "no session".
type SessionValidator struct {
	provider SessionProvider
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker
	logger   Logger
}

// ValidatorOption customizes a SessionValidator.
type ValidatorOption func(*SessionValidator)

// WithValidatorLogger overrides the logger.
func WithValidatorLogger(logger Logger) ValidatorOption {
	return func(v *SessionValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithValidatorTimeout bounds each provider round trip.
func WithValidatorTimeout(timeout time.Duration) ValidatorOption {
	return func(v *SessionValidator) {
		if timeout > 0 {
			v.timeout = timeout
		}
	}
}

// WithValidatorBreaker replaces the default circuit breaker.
func WithValidatorBreaker(breaker *gobreaker.CircuitBreaker) ValidatorOption {
	return func(v *SessionValidator) {
		if breaker != nil {
			v.breaker = breaker
		}
	}
}

// NewSessionValidator wraps provider. The default breaker opens after five
// consecutive provider outages; credential rejections do not count against it.
func NewSessionValidator(provider SessionProvider, opts ...ValidatorOption) *SessionValidator {
	v := &SessionValidator{
		provider: provider,
		timeout:  5 * time.Second,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	if v.breaker == nil {
		v.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "session-provider",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// only outages trip the breaker, rejected credentials are
				// a normal provider answer
				return err == nil || !isProviderOutage(err)
			},
		})
	}

	return v
}

// Validate resolves credential into a Session. It never fails open: every
// error path returns a nil session alongside the classified error.
func (v *SessionValidator) Validate(ctx context.Context, credential string) (Session, error) {
	if credential == "" {
		return nil, ErrNoSession
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()
	res, err := v.breaker.Execute(func() (any, error) {
		return v.provider.Resolve(callCtx, credential)
	})
	elapsed := time.Since(start)

	if err != nil {
		if isProviderOutage(err) {
			v.logger.Error("identity provider unavailable", "error", err, "elapsed", elapsed)
			return nil, errors.Wrap(err, errors.CategoryOperation, "identity provider unavailable").
				WithTextCode(textCodeProviderUnavailable).
				WithCode(errors.CodeUnauthorized)
		}

		v.logger.Debug("credential rejected", "error", err, "elapsed", elapsed)
		return nil, err
	}

	session, ok := res.(Session)
	if !ok || session == nil {
		return nil, ErrNoSession
	}

	v.logger.Debug("session resolved", "subject", session.GetSubjectID(), "elapsed", elapsed)
	return session, nil
}

func isProviderOutage(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	return IsProviderUnavailableError(err)
}
