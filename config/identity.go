package config

import (
	"errors"
	"strings"
	"time"
)

// IdentityConfig contains configuration for the remote identity service's
// admin API (user lookup, password updates, credential verification).
// The service-role key is privileged and treated as an opaque secret.
type IdentityConfig struct {
	// ServiceURL is the base URL of the identity service (e.g. "https://id.fleeks.jp").
	ServiceURL string `env:"SERVICE_URL"`

	// ServiceRoleKey authorizes privileged admin API calls.
	ServiceRoleKey string `env:"SERVICE_ROLE_KEY"`

	// Timeout bounds each admin API call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sanitize normalises identity service configuration values.
func (c *IdentityConfig) Sanitize() {
	c.ServiceURL = strings.TrimRight(strings.TrimSpace(c.ServiceURL), "/")
	c.ServiceRoleKey = strings.TrimSpace(c.ServiceRoleKey)
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate reports a configuration error when the admin API cannot be used.
// Callers that need the admin API (password reset, emergency login,
// provisioning) must fail fast on this rather than degrade silently.
func (c *IdentityConfig) Validate() error {
	if c.ServiceURL == "" {
		return errors.New("identity service URL is required (IDENTITY_SERVICE_URL)")
	}
	if c.ServiceRoleKey == "" {
		return errors.New("identity service role key is required (IDENTITY_SERVICE_ROLE_KEY)")
	}
	return nil
}
