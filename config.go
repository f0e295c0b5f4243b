package gateway

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// GatewayConfig is a concrete Config for hosts that do not bring their own.
type GatewayConfig struct {
	Routes           RouteTable
	HomePath         string
	ReturnToParam    string
	CredentialLookup string
	AuthScheme       string
	ProviderTimeout  time.Duration
}

var _ Config = &GatewayConfig{}

// DefaultConfig returns a GatewayConfig with the stock route table: sign-in
// and sign-up under /auth, the provider mounted at /api/auth, and a liveness
// probe at /api/health.
func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{
		Routes: RouteTable{
			PublicPaths:       []string{"/", "/auth/signin", "/auth/signup"},
			PublicAPIPrefixes: []string{"/api/health"},
			ProviderPrefix:    "/api/auth",
			AssetPrefixes:     []string{"/_next"},
			SignInPath:        "/auth/signin",
			SignUpPath:        "/auth/signup",
		},
		HomePath:         "/",
		ReturnToParam:    "returnTo",
		CredentialLookup: "header:Authorization,cookie:session",
		AuthScheme:       "Bearer",
		ProviderTimeout:  5 * time.Second,
	}
}

func (c *GatewayConfig) GetRoutes() RouteTable {
	return c.Routes
}

func (c *GatewayConfig) GetHomePath() string {
	if c.HomePath == "" {
		return "/"
	}
	return c.HomePath
}

func (c *GatewayConfig) GetReturnToParam() string {
	if c.ReturnToParam == "" {
		return "returnTo"
	}
	return c.ReturnToParam
}

func (c *GatewayConfig) GetCredentialLookup() string {
	if c.CredentialLookup == "" {
		return "header:Authorization,cookie:session"
	}
	return c.CredentialLookup
}

func (c *GatewayConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *GatewayConfig) GetProviderTimeout() time.Duration {
	if c.ProviderTimeout <= 0 {
		return 5 * time.Second
	}
	return c.ProviderTimeout
}

// Validate checks the config and its route table.
func (c *GatewayConfig) Validate() error {
	if err := c.Routes.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.HomePath, validation.By(optionalRelativePathRule)),
	)
}

func optionalRelativePathRule(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return relativePathRule(s)
}
