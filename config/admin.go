package config

import (
	"strings"
	"time"
)

// AdminConfig contains configuration for privileged maintenance endpoints:
// the shared admin secret gating password resets, and the emergency login
// escape hatch used when the identity provider is unavailable.
type AdminConfig struct {
	// Password is the shared secret required by the password reset endpoint.
	// Either a bcrypt hash (preferred) or a plaintext value for development.
	Password string `env:"ADMIN_PASSWORD,required"`

	// EmergencyEmail optionally restricts emergency login to one account.
	EmergencyEmail string `env:"EMERGENCY_EMAIL"`

	// EmergencyCode is the shared code required by emergency login.
	// Same format rules as Password.
	EmergencyCode string `env:"EMERGENCY_CODE"`

	// EmergencyDelay is the fixed pause applied to every emergency login
	// attempt, success or failure, to blunt brute forcing.
	EmergencyDelay time.Duration `env:"EMERGENCY_DELAY" envDefault:"3s"`

	// EmergencyRateLimit is the sustained attempts-per-minute allowed per
	// client IP on the emergency login endpoint.
	EmergencyRateLimit int `env:"EMERGENCY_RATE_LIMIT" envDefault:"3"`

	// EmergencyRateBurst is the per-IP burst allowance.
	EmergencyRateBurst int `env:"EMERGENCY_RATE_BURST" envDefault:"3"`

	// SessionTTL is the lifetime of sessions minted by emergency login.
	SessionTTL time.Duration `env:"EMERGENCY_SESSION_TTL" envDefault:"1h"`
}

// Sanitize applies guardrails so a bad environment cannot disable the
// fixed-delay or rate-limit protections.
func (c *AdminConfig) Sanitize() {
	c.Password = strings.TrimSpace(c.Password)
	c.EmergencyEmail = strings.ToLower(strings.TrimSpace(c.EmergencyEmail))
	c.EmergencyCode = strings.TrimSpace(c.EmergencyCode)
	if c.EmergencyDelay < time.Second {
		c.EmergencyDelay = time.Second
	}
	if c.EmergencyDelay > 30*time.Second {
		c.EmergencyDelay = 30 * time.Second
	}
	if c.EmergencyRateLimit < 1 {
		c.EmergencyRateLimit = 1
	}
	if c.EmergencyRateBurst < 1 {
		c.EmergencyRateBurst = 1
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Hour
	}
}

// EmergencyLoginEnabled reports whether the emergency login endpoint
// has enough configuration to operate.
func (c *AdminConfig) EmergencyLoginEnabled() bool {
	return c.EmergencyCode != ""
}
