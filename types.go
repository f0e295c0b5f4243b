package gateway

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of a validated identity session
type Session interface {
	GetSubjectID() string
	GetRole() string
	GetExpiresAt() time.Time
	GetData() map[string]any
}

// SessionProvider resolves an opaque credential into a valid Session.
// Implementations own expiry: an expired credential must resolve to an
// error, never to an expired-but-present session.
type SessionProvider interface {
	Resolve(ctx context.Context, credential string) (Session, error)
}

// SessionProviderFunc adapts a function to the SessionProvider interface.
type SessionProviderFunc func(ctx context.Context, credential string) (Session, error)

// Resolve implements SessionProvider.
func (f SessionProviderFunc) Resolve(ctx context.Context, credential string) (Session, error) {
	if f == nil {
		return nil, ErrNoSession
	}
	return f(ctx, credential)
}

// Navigator performs a client navigation side effect, e.g. the full page
// redirect issued by RouteGuard or RetryPolicy when a session is missing.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(target string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(target string) {
	if f == nil {
		return
	}
	f(target)
}

// Config holds gateway options
type Config interface {
	GetRoutes() RouteTable
	GetHomePath() string
	GetReturnToParam() string
	GetCredentialLookup() string
	GetAuthScheme() string
	GetProviderTimeout() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] GATEWAY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] GATEWAY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] GATEWAY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
