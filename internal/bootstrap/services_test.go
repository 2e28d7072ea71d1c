package bootstrap

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Shiki0138/fleeksonline/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAccountServiceFailsWithoutIdentityConfig(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Sanitize()

	_, err := buildAccountService(accountServiceDeps{
		Config: cfg,
		Logger: testLogger(),
	})
	if err == nil {
		t.Fatal("buildAccountService() should fail when identity service is not configured")
	}
}

func TestBuildAccountServiceFailsWithoutSessionStore(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Identity.ServiceURL = "https://id.fleeks.example"
	cfg.Identity.ServiceRoleKey = "service-role-key"
	cfg.Identity.Timeout = 5 * time.Second
	cfg.Admin.Password = "hunter22hunter22"
	cfg.Sanitize()

	_, err := buildAccountService(accountServiceDeps{
		Config: cfg,
		Logger: testLogger(),
	})
	if err == nil {
		t.Fatal("buildAccountService() should fail without a session store")
	}
}

func TestBuildObservabilityDisabledWithoutAddress(t *testing.T) {
	obs := config.ObservabilityConfig{}
	obs.Metrics.Enabled = true
	obs.Metrics.StatsdAddress = ""
	obs.Sanitize()

	got := buildObservability(testLogger(), obs)
	if got.MetricsSink != nil {
		t.Fatalf("buildObservability() sink = %v, want nil when no address configured", got.MetricsSink)
	}
}
