package gateway

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// PathClass is the classification the gate assigns to a request path.
type PathClass int

const (
	// ClassProtected paths require a valid session.
	ClassProtected PathClass = iota
	// ClassPublic paths are unauthenticated pages, e.g. home and sign-in.
	ClassPublic
	// ClassPublicAPI paths are unauthenticated API prefixes, e.g. liveness.
	ClassPublicAPI
	// ClassAuthExempt paths belong to the identity provider itself and must
	// never be gated or the provider round trip becomes impossible.
	ClassAuthExempt
)

func (c PathClass) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassPublicAPI:
		return "public_api"
	case ClassAuthExempt:
		return "auth_exempt"
	default:
		return "protected"
	}
}

// RouteTable enumerates gate routing decisions as data so they can be
// audited and changed without touching gate logic.
type RouteTable struct {
	// PublicPaths match exactly: home, sign-in, sign-up.
	PublicPaths []string
	// PublicAPIPrefixes match by prefix, e.g. "/api/health".
	PublicAPIPrefixes []string
	// ProviderPrefix is the identity provider's own route prefix,
	// e.g. "/api/auth".
	ProviderPrefix string
	// AssetPrefixes bypass the gate entirely, e.g. "/_next".
	AssetPrefixes []string
	// SignInPath and SignUpPath are the credential-flow pages an
	// authenticated user gets bounced away from.
	SignInPath string
	SignUpPath string
}

// Validate checks the table is complete enough to gate with.
func (r RouteTable) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProviderPrefix, validation.Required, validation.By(relativePathRule)),
		validation.Field(&r.SignInPath, validation.Required, validation.By(relativePathRule)),
		validation.Field(&r.SignUpPath, validation.Required, validation.By(relativePathRule)),
	)
}

func relativePathRule(value any) error {
	s, _ := value.(string)
	if !IsRelativePath(s) {
		return ErrNotRelativePath
	}
	return nil
}

// Classify maps a request path to its PathClass. Pure and total over all
// string inputs.
func (r RouteTable) Classify(path string) PathClass {
	if r.ProviderPrefix != "" && strings.HasPrefix(path, r.ProviderPrefix) {
		return ClassAuthExempt
	}

	for _, p := range r.PublicPaths {
		if path == p {
			return ClassPublic
		}
	}

	for _, prefix := range r.PublicAPIPrefixes {
		if strings.HasPrefix(path, prefix) {
			return ClassPublicAPI
		}
	}

	return ClassProtected
}

// ShouldBypass reports whether path is exempt from classification entirely:
// framework assets, the favicon, or anything with a file extension in its
// final segment.
func (r RouteTable) ShouldBypass(path string) bool {
	for _, prefix := range r.AssetPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}

	if path == "/favicon.ico" {
		return true
	}

	last := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		last = path[idx+1:]
	}
	return strings.Contains(last, ".")
}

// IsAuthPage reports whether path is exactly the sign-in or sign-up page.
func (r RouteTable) IsAuthPage(path string) bool {
	return path == r.SignInPath || path == r.SignUpPath
}
