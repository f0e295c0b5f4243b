// Package jwtsession is a reference SessionProvider that validates HS256
// signed credential tokens locally. Expiry is resolved here: the gate never
// observes an expired-but-present session.
package jwtsession

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gateway"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Role string         `json:"role,omitempty"`
	Data map[string]any `json:"dat,omitempty"`
}

// Provider validates credential tokens into gateway Sessions.
type Provider struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	logger     gateway.Logger
}

// Option customizes a Provider.
type Option func(*Provider)

// WithIssuer requires tokens to carry the given issuer.
func WithIssuer(issuer string) Option {
	return func(p *Provider) {
		p.issuer = issuer
	}
}

// WithAudience requires tokens to carry one of the given audiences.
func WithAudience(audience ...string) Option {
	return func(p *Provider) {
		p.audience = audience
	}
}

// WithLogger overrides the logger.
func WithLogger(logger gateway.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Provider signing-key validator.
func New(signingKey []byte, opts ...Option) *Provider {
	p := &Provider{
		signingKey: signingKey,
		logger:     noopLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

var _ gateway.SessionProvider = &Provider{}

// Resolve implements gateway.SessionProvider. Any failure shape (expired,
// malformed, wrong signature) resolves to an error so the gate fails closed.
func (p *Provider) Resolve(_ context.Context, credential string) (gateway.Session, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if p.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(p.issuer))
	}
	if len(p.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(p.audience...))
	}

	token, err := jwt.ParseWithClaims(credential, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			p.logger.Error("jwtsession encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, gateway.ErrNoSession.Clone().WithMetadata(map[string]any{
				"reason": "token expired",
			})
		}
		return nil, errors.Wrap(err, errors.CategoryAuth, "invalid credential token").
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		p.logger.Error("jwtsession could not decode or validate claims")
		return nil, gateway.ErrNoSession
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	return &gateway.SessionObject{
		SubjectID: claims.Subject,
		Role:      claims.Role,
		ExpiresAt: expires,
		Data:      claims.Data,
	}, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
