package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "WIZARD_FLOW", "SUBMIT_DELAY", "EVENTS_TRANSPORT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.WizardFlow != "short" {
		t.Fatalf("expected short flow by default, got %s", cfg.WizardFlow)
	}
	if cfg.SubmitDelay != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s submit delay, got %s", cfg.SubmitDelay)
	}
	if cfg.AvailabilityDelay != 800*time.Millisecond {
		t.Fatalf("expected 800ms availability delay, got %s", cfg.AvailabilityDelay)
	}
	if cfg.EventsTransport != "none" {
		t.Fatalf("expected events transport none, got %s", cfg.EventsTransport)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config reported production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("WIZARD_FLOW", " LONG ")
	t.Setenv("SUBMIT_DELAY", "250ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ALLOW_FAKE_PAYMENTS", "true")
	t.Setenv("OUTBOX_INTERVAL", "not-a-duration")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.WizardFlow != "long" {
		t.Fatalf("expected normalized long flow, got %q", cfg.WizardFlow)
	}
	if cfg.SubmitDelay != 250*time.Millisecond {
		t.Fatalf("expected submit delay override, got %s", cfg.SubmitDelay)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 4 {
		t.Fatalf("unexpected rate limit settings %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("unexpected kafka brokers %v", cfg.KafkaBrokers)
	}
	if !cfg.AllowFakePayments {
		t.Fatalf("expected fake payments enabled")
	}
	if cfg.OutboxInterval != 2*time.Second {
		t.Fatalf("expected invalid duration to fall back to default, got %s", cfg.OutboxInterval)
	}
}
