package httpx

import (
	"log/slog"
	"net/http"

	"github.com/Shiki0138/fleeksonline/internal/observability/statsd"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth          *service.AuthService
	Roles         *service.RoleResolver
	Notifications *service.NotificationService
	Accounts      *service.AccountService
	CookieDomain  string
	// EmergencyRequestsPerMinute / EmergencyBurst bound the per-IP rate on
	// the emergency login endpoint. Zero values fall back to defaults.
	EmergencyRequestsPerMinute int
	EmergencyBurst             int
	Metrics                    statsd.Sink  // optional
	Logger                     *slog.Logger // optional
}

// NewRouter creates and configures the HTTP router with the full
// middleware chain applied.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}
	notificationHandlers := &NotificationHandlers{
		Svc:    services.Notifications,
		Logger: logger,
	}
	accountHandlers := &AccountHandlers{
		Svc:          services.Accounts,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}

	adminGate := RequireAdmin(AdminGateOptions{
		Auth:    services.Auth,
		Roles:   services.Roles,
		Metrics: services.Metrics,
		Logger:  logger,
	})
	emergencyLimit := RateLimitByIP(RateLimitConfig{
		RequestsPerMinute: services.EmergencyRequestsPerMinute,
		Burst:             services.EmergencyBurst,
		Metrics:           services.Metrics,
		Logger:            logger,
	})

	registerAuthRoutes(mux, authHandlers)
	registerAdminRoutes(mux, adminRoutes{
		Notifications: notificationHandlers,
		Accounts:      accountHandlers,
		Gate:          adminGate,
	})
	mux.Handle("POST /api/auth/emergency-login",
		emergencyLimit(http.HandlerFunc(accountHandlers.EmergencyLogin)))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = Compression(CompressionConfig{Logger: logger})(handler)
	handler = Metrics(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("GET /auth/signout", h.Signout)
	mux.HandleFunc("POST /auth/signout", h.Signout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// adminRoutes groups the admin-gated handlers for registration.
type adminRoutes struct {
	Notifications *NotificationHandlers
	Accounts      *AccountHandlers
	Gate          func(http.Handler) http.Handler
}

func registerAdminRoutes(mux *http.ServeMux, r adminRoutes) {
	gate := r.Gate
	mux.Handle("GET /api/admin/notifications",
		gate(http.HandlerFunc(r.Notifications.List)))
	mux.Handle("POST /api/admin/notifications/read-all",
		gate(http.HandlerFunc(r.Notifications.MarkAllRead)))
	mux.Handle("POST /api/admin/reset-user-password",
		gate(http.HandlerFunc(r.Accounts.ResetPassword)))
}
