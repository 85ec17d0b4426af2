package config

import (
	"strings"
	"testing"
)

func TestLoadDefaultsWithAuthDisabled(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected port 9090 got %s", cfg.HTTPPort)
	}
	if cfg.AuthEnabled {
		t.Fatalf("expected auth disabled")
	}
	if cfg.Timezone != "Europe/Istanbul" {
		t.Fatalf("unexpected timezone %s", cfg.Timezone)
	}
}

func TestValidateRequiresSecretWhenAuthEnabled(t *testing.T) {
	cfg := &Config{AuthEnabled: true, Timezone: "UTC", AdminPasswordHash: "x"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}

	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "32") {
		t.Fatalf("expected length error, got %v", err)
	}

	cfg.JWTSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsUnknownTimezone(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected timezone error")
	}
}
