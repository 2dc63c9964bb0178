package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Inventory.ReservationTTL != 30*time.Minute {
		t.Errorf("Expected default reservation TTL of 30m, got %v", cfg.Inventory.ReservationTTL)
	}
	if cfg.Inventory.SweepInterval != 1*time.Minute {
		t.Errorf("Expected default sweep interval of 1m, got %v", cfg.Inventory.SweepInterval)
	}
	if cfg.Inventory.DegradedMode != DegradedFailOpen {
		t.Errorf("Expected default degraded mode fail-open, got %s", cfg.Inventory.DegradedMode)
	}
	if cfg.Database.DSN == "" {
		t.Error("Expected DSN to be built from parts")
	}
	if cfg.Redis.Addr != cfg.Redis.Host+":"+cfg.Redis.Port {
		t.Errorf("Redis addr not composed correctly: %s", cfg.Redis.Addr)
	}
}

func TestDegradedModeOverride(t *testing.T) {
	t.Setenv("INVENTORY_DEGRADED_MODE", "fail-closed")
	cfg := Load()
	if cfg.Inventory.DegradedMode != DegradedFailClosed {
		t.Errorf("Expected fail-closed, got %s", cfg.Inventory.DegradedMode)
	}
}

func TestDegradedModeUnknownFallsOpen(t *testing.T) {
	t.Setenv("INVENTORY_DEGRADED_MODE", "whatever")
	cfg := Load()
	if cfg.Inventory.DegradedMode != DegradedFailOpen {
		t.Errorf("Unrecognized policy should fall back to fail-open, got %s", cfg.Inventory.DegradedMode)
	}
}
