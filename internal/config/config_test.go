package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/iftar")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAILS", "")
	t.Setenv("TODAY_TZ", "")
	t.Setenv("LOCATE_TIMEOUT", "")
	t.Setenv("EXPORT_INTERVAL", "")
	t.Setenv("LISTINGS_REFRESH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := cfg.AdminEmails[defaultAdminEmail]; !ok || len(cfg.AdminEmails) != 1 {
		t.Fatalf("expected default admin, got %v", cfg.AdminEmails)
	}
	if cfg.TodayZone != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.TodayZone)
	}
	if cfg.Locate.Timeout != 10*time.Second || cfg.ExportInterval != 10*time.Minute {
		t.Fatalf("unexpected durations %v %v", cfg.Locate.Timeout, cfg.ExportInterval)
	}
	if cfg.ListingsRefresh != time.Minute {
		t.Fatalf("unexpected listings refresh %v", cfg.ListingsRefresh)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/iftar")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TODAY_TZ", "Not/AZone")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad zone")
	}
}

func TestParseEmailSet(t *testing.T) {
	set := parseEmailSet(" Admin@Ifter.com, ,nobody, mod@ifter.com ")
	if len(set) != 2 {
		t.Fatalf("expected 2 emails, got %v", set)
	}
	if _, ok := set["admin@ifter.com"]; !ok {
		t.Fatalf("expected lowercased admin email")
	}
}

func TestDurationFallback(t *testing.T) {
	t.Setenv("LOCATE_TIMEOUT", "soon")
	if got := getenvDuration("LOCATE_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	t.Setenv("LOCATE_TIMEOUT", "3s")
	if got := getenvDuration("LOCATE_TIMEOUT", time.Second); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
}
