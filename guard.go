package gateway

import (
	"sync"
)

// GuardState is the render-time authorization state of a RouteGuard.
type GuardState int

const (
	// GuardLoading means the session fetch has not resolved yet.
	GuardLoading GuardState = iota
	// GuardUnauthenticated means no session resolved; a redirect is pending
	// or already issued.
	GuardUnauthenticated
	// GuardAuthenticated means the wrapped content may render.
	GuardAuthenticated
)

func (s GuardState) String() string {
	switch s {
	case GuardUnauthenticated:
		return "unauthenticated"
	case GuardAuthenticated:
		return "authenticated"
	default:
		return "loading"
	}
}

// RouteGuard protects content whose authorization check completes only after
// an asynchronous session fetch, closing the timing gap the EdgeGate cannot
// cover. One guard per mount; Resolve feeds it each fetch result.
type RouteGuard struct {
	mu            sync.Mutex
	state         GuardState
	redirected    bool
	navigator     Navigator
	currentPath   string
	signInPath    string
	returnToParam string
	logger        Logger
}

// GuardOption customizes a RouteGuard.
type GuardOption func(*RouteGuard)

// WithGuardLogger overrides the logger.
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *RouteGuard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithGuardSignInPath overrides the sign-in target.
func WithGuardSignInPath(path string) GuardOption {
	return func(g *RouteGuard) {
		if path != "" {
			g.signInPath = path
		}
	}
}

// WithGuardReturnToParam overrides the returnTo parameter name.
func WithGuardReturnToParam(param string) GuardOption {
	return func(g *RouteGuard) {
		if param != "" {
			g.returnToParam = param
		}
	}
}

// NewRouteGuard builds a guard for the render at currentPath. navigator
// receives at most one redirect for the guard's lifetime.
func NewRouteGuard(navigator Navigator, currentPath string, opts ...GuardOption) *RouteGuard {
	g := &RouteGuard{
		state:         GuardLoading,
		navigator:     navigator,
		currentPath:   currentPath,
		signInPath:    "/auth/signin",
		returnToParam: "returnTo",
		logger:        defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Resolve feeds the guard a session fetch result. The transition is
// idempotent: re-resolving an already settled state never re-triggers the
// redirect. A nil session after authentication is ignored so a transient
// re-fetch cannot tear down rendered content.
func (g *RouteGuard) Resolve(session Session) GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()

	if session != nil {
		g.state = GuardAuthenticated
		return g.state
	}

	if g.state == GuardAuthenticated {
		return g.state
	}

	g.state = GuardUnauthenticated
	if !g.redirected {
		g.redirected = true
		target := g.signInPath + "?" + g.returnToParam + "=" + g.currentPath
		g.logger.Info("route guard redirecting to sign-in", "path", g.currentPath)
		g.navigator.Navigate(target)
	}

	return g.state
}

// State returns the current guard state.
func (g *RouteGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Authorized reports whether the wrapped content may render. While false the
// caller should render a neutral loading indicator, never protected content.
func (g *RouteGuard) Authorized() bool {
	return g.State() == GuardAuthenticated
}
