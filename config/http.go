package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.fleeks.jp").
	// Used for generating absolute URLs in external contexts.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// LoginPath is where unauthenticated and failed callbacks are redirected.
	// The page itself is served by the frontend, not by this service.
	LoginPath string `env:"APP_LOGIN_PATH" envDefault:"/login"`

	// DashboardPath is where established sessions land after the callback.
	DashboardPath string `env:"APP_DASHBOARD_PATH" envDefault:"/dashboard"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.LoginPath = sanitizeAppPath(h.LoginPath, "/login")
	h.DashboardPath = sanitizeAppPath(h.DashboardPath, "/dashboard")
}

// sanitizeAppPath keeps redirect targets same-origin relative paths.
func sanitizeAppPath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return fallback
	}
	return p
}
