package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %s, want 24h", cfg.CacheTTL)
	}
	if cfg.AvailabilityCacheTTL != time.Minute {
		t.Errorf("AvailabilityCacheTTL = %s, want 1m", cfg.AvailabilityCacheTTL)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("WorkerCount = %d, want 2", cfg.WorkerCount)
	}
	if cfg.MailProvider != "stub" {
		t.Errorf("MailProvider = %q, want stub", cfg.MailProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("MAIL_PROVIDER", "SendGrid")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %s, want 1h", cfg.CacheTTL)
	}
	if !cfg.UseMemoryQueue {
		t.Error("UseMemoryQueue = false, want true")
	}
	if cfg.MailProvider != "sendgrid" {
		t.Errorf("MailProvider = %q, want sendgrid (lowercased)", cfg.MailProvider)
	}
	if cfg.RateLimitPerSecond != 2.5 {
		t.Errorf("RateLimitPerSecond = %v, want 2.5", cfg.RateLimitPerSecond)
	}
}
