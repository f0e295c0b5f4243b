package gateware

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-gateway"
	"github.com/goliatone/go-router"
)

var defaultCredentialLookup = "header:" + router.HeaderAuthorization + ",cookie:session"

// Gate is the decision surface the middleware drives. Implemented by
// gateway.EdgeGate; declared locally so tests can stub it.
type Gate interface {
	Handle(ctx context.Context, req gateway.GateRequest) gateway.GateDecision
}

type Config struct {
	// Gate is required.
	Gate Gate
	// Filter skips the middleware when it returns true.
	Filter func(router.Context) bool
	// SuccessHandler runs on Allow; defaults to ctx.Next().
	SuccessHandler router.HandlerFunc
	// ErrorHandler runs when a redirect cannot be issued.
	ErrorHandler router.ErrorHandler
	// CredentialLookup mirrors jwtware's token lookup syntax:
	// "header:Authorization,cookie:session,query:token".
	CredentialLookup string
	// AuthScheme strips the scheme prefix from header credentials.
	AuthScheme string
	// ContextKey is where the resolved session lands in router locals.
	ContextKey string
	// ReturnToParam names the query parameter carrying the resume path.
	ReturnToParam string

	Logger gateway.Logger
}

// New returns the gate middleware. Every request either reaches the next
// handler with its session in context, or is redirected, before any business
// logic runs.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		extractors := credentialExtractors(cfg.CredentialLookup, cfg.AuthScheme)

		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			credential := extractCredential(ctx, extractors)

			decision := cfg.Gate.Handle(ctx.Context(), gateway.GateRequest{
				Path:       ctx.Path(),
				Credential: credential,
				ReturnTo:   ctx.Query(cfg.ReturnToParam, ""),
			})

			switch decision.Kind {
			case gateway.DecisionRedirectSignIn, gateway.DecisionRedirectHome:
				cfg.Logger.Debug("gate middleware redirect", "kind", decision.Kind, "target", decision.Target)
				return ctx.Redirect(decision.Target, redirectStatus(ctx))
			default:
				if decision.Session != nil {
					ctx.Locals(cfg.ContextKey, decision.Session)

					stdCtx := gateway.WithSessionContext(ctx.Context(), decision.Session)
					stdCtx = gateway.WithRequestMeta(stdCtx, gateway.RequestMeta{
						IPAddress: ctx.IP(),
						UserAgent: ctx.GetString("User-Agent", ""),
					})
					ctx.SetContext(stdCtx)
				}
				return cfg.SuccessHandler(ctx)
			}
		}
	}
}

// GetDefaultConfig fills missing Config fields with defaults.
func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Gate == nil {
		panic("GATEWAY: gate middleware configuration: Gate is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return c.Status(router.StatusUnauthorized).SendString("Authentication required")
		}
	}

	if cfg.CredentialLookup == "" {
		cfg.CredentialLookup = defaultCredentialLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "session"
	}

	if cfg.ReturnToParam == "" {
		cfg.ReturnToParam = "returnTo"
	}

	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}

	return cfg
}

func redirectStatus(ctx router.Context) int {
	if ctx.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// CredentialExtractor pulls a raw credential from the request. Returning ""
// is not an error: absence of a credential is a normal gate input.
type CredentialExtractor func(c router.Context) string

func extractCredential(ctx router.Context, extractors []CredentialExtractor) string {
	for _, extractor := range extractors {
		if raw := extractor(ctx); raw != "" {
			return raw
		}
	}
	return ""
}

// credentialExtractors parses a lookup string of the form
// "header:Authorization,cookie:session,query:token".
func credentialExtractors(lookup string, authScheme string) []CredentialExtractor {
	extractors := make([]CredentialExtractor, 0)

	for _, rootPart := range strings.Split(lookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		source := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, credentialFromHeader(name, authScheme))
		case "cookie":
			extractors = append(extractors, credentialFromCookie(name))
		case "query":
			extractors = append(extractors, credentialFromQuery(name))
		}
	}

	return extractors
}

func credentialFromHeader(header string, authScheme string) CredentialExtractor {
	return func(c router.Context) string {
		a := c.GetString(header, "")
		if a == "" {
			return ""
		}

		scheme := strings.TrimSpace(authScheme)
		if scheme == "" {
			return strings.TrimSpace(a)
		}

		l := len(scheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], scheme) {
			return strings.TrimSpace(a[l:])
		}
		return ""
	}
}

func credentialFromCookie(name string) CredentialExtractor {
	return func(c router.Context) string {
		return c.Cookies(name, "")
	}
}

func credentialFromQuery(param string) CredentialExtractor {
	return func(c router.Context) string {
		return c.Query(param, "")
	}
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
