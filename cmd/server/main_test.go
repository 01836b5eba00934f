package main

import (
	"testing"
	"time"

	"github.com/osolis/billingcore/internal/infrastructure/config"
)

func TestNewRateLimiter(t *testing.T) {
	if rl := newRateLimiter(&config.Config{RateLimitPerSecond: 0}); rl != nil {
		t.Fatal("expected nil limiter when rate limiting is disabled")
	}

	if rl := newRateLimiter(&config.Config{RateLimitPerSecond: 5, RateLimitBurst: 10}); rl == nil {
		t.Fatal("expected limiter when a rate is configured")
	}
}

func TestShutdownTimeout(t *testing.T) {
	if got := shutdownTimeout(&config.Config{}); got != 10*time.Second {
		t.Fatalf("expected 10s default, got %s", got)
	}

	if got := shutdownTimeout(&config.Config{HTTPShutdownTimeout: 3 * time.Second}); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
}
