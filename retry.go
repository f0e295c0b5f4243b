package gateway

import (
	"context"
)

// DefaultMaxRetries is the retry budget applied when none is configured.
const DefaultMaxRetries = 2

// RetryableOperation is a fallible operation supplied fresh per invocation.
// It must be idempotent from the caller's perspective: the policy may run it
// more than once before giving up.
type RetryableOperation func(ctx context.Context) error

// RetryPolicy wraps operations that may outlive a session. Failures carrying
// an unauthorized signal are never retried, the budget is spent navigating
// the user back to sign-in instead; every other failure retries sequentially
// up to the attempt budget.
type RetryPolicy struct {
	maxRetries    int
	navigator     Navigator
	currentPath   string
	signInPath    string
	returnToParam string
	logger        Logger
}

// RetryOption customizes a RetryPolicy.
type RetryOption func(*RetryPolicy)

// WithMaxRetries sets the retry budget; attempts = maxRetries + 1.
func WithMaxRetries(n int) RetryOption {
	return func(p *RetryPolicy) {
		if n >= 0 {
			p.maxRetries = n
		}
	}
}

// WithRetryLogger overrides the logger.
func WithRetryLogger(logger Logger) RetryOption {
	return func(p *RetryPolicy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRetrySignInPath overrides the sign-in target.
func WithRetrySignInPath(path string) RetryOption {
	return func(p *RetryPolicy) {
		if path != "" {
			p.signInPath = path
		}
	}
}

// WithRetryReturnToParam overrides the returnTo parameter name.
func WithRetryReturnToParam(param string) RetryOption {
	return func(p *RetryPolicy) {
		if param != "" {
			p.returnToParam = param
		}
	}
}

// NewRetryPolicy builds a policy for operations issued from currentPath.
// navigator receives the sign-in redirect when a session expires mid-flight.
func NewRetryPolicy(navigator Navigator, currentPath string, opts ...RetryOption) *RetryPolicy {
	p := &RetryPolicy{
		maxRetries:    DefaultMaxRetries,
		navigator:     navigator,
		currentPath:   currentPath,
		signInPath:    "/auth/signin",
		returnToParam: "returnTo",
		logger:        defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Execute runs op up to maxRetries+1 times, strictly sequentially. An
// unauthorized failure short-circuits: one navigation to sign-in, then
// ErrAuthRequired. Exhausting the budget surfaces the last failure unchanged.
func (p *RetryPolicy) Execute(ctx context.Context, op RetryableOperation) error {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		if IsAuthRequiredError(err) {
			// retrying against an expired session cannot succeed, spend the
			// budget on re-authentication instead
			target := p.signInPath + "?" + p.returnToParam + "=" + p.currentPath
			p.logger.Info("session expired mid-operation, redirecting", "path", p.currentPath)
			p.navigator.Navigate(target)
			return ErrAuthRequired
		}

		lastErr = err
		p.logger.Debug("operation failed, retrying", "attempt", attempt+1, "error", err)
	}

	return lastErr
}

// ExecuteFor runs op through policy and returns its value, applying the same
// retry and auth short-circuit rules as Execute.
func ExecuteFor[T any](ctx context.Context, policy *RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := policy.Execute(ctx, func(ctx context.Context) error {
		value, err := op(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}
