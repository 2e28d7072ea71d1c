package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Shiki0138/fleeksonline/config"
	"github.com/Shiki0138/fleeksonline/internal/adapters/identityadmin"
	redisadapter "github.com/Shiki0138/fleeksonline/internal/adapters/redis"
	"github.com/Shiki0138/fleeksonline/internal/data"
	"github.com/Shiki0138/fleeksonline/internal/observability/statsd"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Roles         *service.RoleResolver
	Notifications *service.NotificationService
	Accounts      *service.AccountService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires repositories, adapters, and services. Fails fast when
// a privileged dependency (identity admin API) is configured incorrectly.
func BuildServices(deps ServiceDeps) (ServiceContainer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.AppConfig{}
	}

	profileRepo := data.NewProfileRepo(deps.DB)
	notificationRepo := data.NewNotificationRepo(deps.DB)

	authSvc := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		DB:          deps.DB,
		Logger:      logger,
	})

	roleResolver := service.NewRoleResolver(service.RoleResolverOptions{
		Profiles: profileRepo,
		Logger:   logger,
	})

	notificationSvc := service.NewNotificationService(service.NotificationServiceOptions{
		Repo:   notificationRepo,
		Logger: logger,
	})

	accountSvc, err := buildAccountService(accountServiceDeps{
		Config:      cfg,
		RedisClient: deps.RedisClient,
		Auth:        authSvc,
		Roles:       roleResolver,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Auth:          authSvc,
		Roles:         roleResolver,
		Notifications: notificationSvc,
		Accounts:      accountSvc,
		Observability: buildObservability(logger, cfg.Observability),
	}, nil
}

type accountServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Auth        *service.AuthService
	Roles       *service.RoleResolver
	Logger      *slog.Logger
}

// buildAccountService wires password reset and emergency login. The identity
// admin API is mandatory for these endpoints; a half-configured identity
// section is a startup error, not a runtime 500.
func buildAccountService(deps accountServiceDeps) (*service.AccountService, error) {
	cfg := deps.Config

	if err := cfg.Identity.Validate(); err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	identity, err := identityadmin.NewClient(identityadmin.Config{
		BaseURL:        cfg.Identity.ServiceURL,
		ServiceRoleKey: cfg.Identity.ServiceRoleKey,
		Timeout:        cfg.Identity.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	var issuer *service.AuthService
	if deps.Auth != nil {
		issuer = deps.Auth
	} else if deps.RedisClient != nil {
		// Emergency login must work even when the regular IdP flow is
		// disabled; mint sessions straight against the session store.
		issuer = service.NewAuthService(service.AuthServiceOptions{
			Sessions: redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, "session:"),
			Logger:   deps.Logger,
		})
	} else {
		return nil, fmt.Errorf("account service: no session store available")
	}

	return service.NewAccountService(service.AccountServiceOptions{
		Identity: identity,
		Sessions: issuer,
		Roles:    deps.Roles,
		Admin:    cfg.Admin,
		Logger:   deps.Logger,
	}), nil
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "fleeks",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}
