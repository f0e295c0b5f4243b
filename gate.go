package gateway

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrNotRelativePath rejects returnTo values that point off-origin.
var ErrNotRelativePath = errors.New("path must be a same-origin relative path", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// DecisionKind enumerates gate outcomes.
type DecisionKind int

const (
	// DecisionAllow lets the request reach its handler.
	DecisionAllow DecisionKind = iota
	// DecisionRedirectSignIn bounces an unauthenticated request to sign-in.
	DecisionRedirectSignIn
	// DecisionRedirectHome bounces an authenticated request off auth pages.
	DecisionRedirectHome
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRedirectSignIn:
		return "redirect_sign_in"
	case DecisionRedirectHome:
		return "redirect_home"
	default:
		return "allow"
	}
}

// GateRequest is the slice of an inbound request the gate needs.
type GateRequest struct {
	Path       string
	Credential string
	// ReturnTo carries the raw returnTo query value, if any.
	ReturnTo string
}

// GateDecision is produced fresh per request and never persisted.
type GateDecision struct {
	Kind   DecisionKind
	Target string
	// Session is set on Allow when a valid session was resolved.
	Session Session
}

// EdgeGate orchestrates classification and session validation per request,
// deciding allow or redirect before any handler runs.
type EdgeGate struct {
	routes        RouteTable
	validator     *SessionValidator
	homePath      string
	returnToParam string
	logger        Logger
}

// GateOption customizes an EdgeGate.
type GateOption func(*EdgeGate)

// WithGateLogger overrides the logger.
func WithGateLogger(logger Logger) GateOption {
	return func(g *EdgeGate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewEdgeGate builds the gate from cfg and validator.
func NewEdgeGate(cfg Config, validator *SessionValidator, opts ...GateOption) *EdgeGate {
	g := &EdgeGate{
		routes:        cfg.GetRoutes(),
		validator:     validator,
		homePath:      cfg.GetHomePath(),
		returnToParam: cfg.GetReturnToParam(),
		logger:        defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Handle runs the gate algorithm. It always resolves to a decision, never
// an error: validation failures of any shape fail closed to "no session".
func (g *EdgeGate) Handle(ctx context.Context, req GateRequest) GateDecision {
	if g.routes.ShouldBypass(req.Path) {
		return GateDecision{Kind: DecisionAllow}
	}

	class := g.routes.Classify(req.Path)
	if class == ClassAuthExempt {
		return GateDecision{Kind: DecisionAllow}
	}

	session, err := g.validator.Validate(ctx, req.Credential)
	if err != nil {
		session = nil
	}

	if session == nil && class == ClassProtected {
		target := g.routes.SignInPath + "?" + g.returnToParam + "=" + req.Path
		g.logger.Info("gate redirecting to sign-in", "path", req.Path, "target", target)
		return GateDecision{Kind: DecisionRedirectSignIn, Target: target}
	}

	if session != nil && g.routes.IsAuthPage(req.Path) {
		return GateDecision{
			Kind:    DecisionRedirectHome,
			Target:  SanitizeReturnTo(req.ReturnTo, g.homePath),
			Session: session,
		}
	}

	return GateDecision{Kind: DecisionAllow, Session: session}
}

// SanitizeReturnTo returns raw when it is a same-origin relative path, else
// fallback. Prevents open redirects through the returnTo parameter.
func SanitizeReturnTo(raw, fallback string) string {
	if IsRelativePath(raw) {
		return raw
	}
	return fallback
}

// IsRelativePath reports whether p is a single-origin relative path: it must
// start with exactly one "/" and carry no scheme or host smuggling tricks.
func IsRelativePath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	// "//host" and "/\host" are treated as absolute by browsers
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	if strings.Contains(p, "://") || strings.Contains(p, "\\") {
		return false
	}
	return true
}
