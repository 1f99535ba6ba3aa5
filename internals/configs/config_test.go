package configs

import (
	"testing"
	"time"
)

func TestLoadConsoleConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DEVICE_REFRESH_INTERVAL", "CORS_ALLOW_ORIGINS", "ATTENDANCE_LATE_GRACE"} {
		t.Setenv(k, "")
	}
	cfg := LoadConsoleConfig()
	if cfg.Port != "3000" || cfg.DBDriver != "" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Devices.RefreshInterval != 30*time.Second || cfg.LateGrace != 15*time.Minute {
		t.Fatalf("durations = %s %s", cfg.Devices.RefreshInterval, cfg.LateGrace)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadConsoleConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DEVICE_WARN_TEMPERATURE_C", "60.5")
	t.Setenv("DEVICE_REFRESH_INTERVAL", "1m")
	t.Setenv("DEVICE_STALE_AFTER", "soon") // tidak valid → default
	t.Setenv("CORS_ALLOW_ORIGINS", " https://console.campus.ac.id , ,")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg := LoadConsoleConfig()
	if cfg.DBDriver != "sqlite" {
		t.Errorf("driver = %q", cfg.DBDriver)
	}
	if cfg.Devices.WarnTemperatureC != 60.5 || cfg.Devices.RefreshInterval != time.Minute {
		t.Errorf("devices = %+v", cfg.Devices)
	}
	if cfg.Devices.StaleAfter != 2*time.Minute {
		t.Errorf("stale after = %s", cfg.Devices.StaleAfter)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://console.campus.ac.id" {
		t.Errorf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.SeedDemo {
		t.Error("seed demo still on")
	}
}
