package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration for the identity provider.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"fleeks"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"fleeks"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID   string   `env:"USER_ID"   envDefault:"dev-user"`
	Email    string   `env:"EMAIL"     envDefault:"dev@fleeks.local"`
	FullName string   `env:"FULL_NAME" envDefault:"Dev User"`
	Groups   []string `env:"GROUPS"    envDefault:"fleeks-admins"   envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the IdP group whose members sign in with the admin role.
	AdminGroup string `env:"ADMIN_GROUP,required"`

	// ModeratorGroup is the IdP group mapped to the moderator role. Optional.
	ModeratorGroup string `env:"MODERATOR_GROUP"`

	// UserGroup is the IdP group mapped to the regular user role.
	UserGroup string `env:"USER_GROUP,required"`
}
