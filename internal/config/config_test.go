package config

import (
	"testing"
	"time"
)

func TestLoadFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load without a config file must not fail: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("default port: got %d", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Errorf("default mode: got %q", cfg.Mode)
	}
	if cfg.RoomTTL != 24*time.Hour {
		t.Errorf("default room_ttl: got %v", cfg.RoomTTL)
	}
	if cfg.SendBuffer != 256 || cfg.ReadLimit != 262144 {
		t.Errorf("default buffers: %d / %d", cfg.SendBuffer, cfg.ReadLimit)
	}
	if cfg.CursorRate != 60 || cfg.CursorWindow != time.Second {
		t.Errorf("default cursor throttle: %d / %v", cfg.CursorRate, cfg.CursorWindow)
	}
}
