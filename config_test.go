package main

import (
	"errors"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"SPINBALL_ADDR", "SPINBALL_CLIENT_DIR", "SPINBALL_DB", "SPINBALL_ADMIN_SECRET", "SPINBALL_PUBLIC_URL", "SPINBALL_MAX_ROOMS"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != ":memory:" || cfg.MaxRooms != 100 || cfg.IssueToken {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("SPINBALL_ADDR", ":9000")
	t.Setenv("SPINBALL_MAX_ROOMS", "12")
	t.Setenv("SPINBALL_PUBLIC_URL", "https://play.example.com")
	t.Setenv("SPINBALL_ADMIN_SECRET", "s3cret")

	cfg, err := LoadConfig([]string{"-addr", ":9100", "-issue-token"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9100" {
		t.Errorf("flag should override env, addr = %s", cfg.Addr)
	}
	if cfg.MaxRooms != 12 || cfg.PublicURL != "https://play.example.com" || !cfg.IssueToken {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("SPINBALL_MAX_ROOMS", "lots")
	if _, err := LoadConfig(nil); err == nil {
		t.Error("non-numeric max rooms should fail")
	}

	t.Setenv("SPINBALL_MAX_ROOMS", "")
	if _, err := LoadConfig([]string{"-max-rooms", "0"}); err == nil {
		t.Error("zero max rooms should fail")
	}
	if _, err := LoadConfig([]string{"-bogus"}); err == nil {
		t.Error("unknown flag should fail")
	}
}

func TestLoadConfigIssueTokenNeedsStableSecret(t *testing.T) {
	t.Setenv("SPINBALL_ADMIN_SECRET", "")
	t.Setenv("SPINBALL_DB", "")

	if _, err := LoadConfig([]string{"-issue-token"}); !errors.Is(err, errTokenNeedsSecret) {
		t.Errorf("in-memory db without a secret: err = %v", err)
	}
	if _, err := LoadConfig([]string{"-issue-token", "-admin-secret", "s3cret"}); err != nil {
		t.Errorf("explicit secret should be accepted: %v", err)
	}
	if _, err := LoadConfig([]string{"-issue-token", "-db", "stats.db"}); err != nil {
		t.Errorf("file database persists the secret: %v", err)
	}
}

func TestIssuedTokenValidOnServerWithSameSecret(t *testing.T) {
	t.Setenv("SPINBALL_ADMIN_SECRET", "s3cret")
	t.Setenv("SPINBALL_DB", "")
	cfg, err := LoadConfig([]string{"-issue-token"})
	if err != nil {
		t.Fatal(err)
	}

	minted, err := NewAuth(openTestDB(t), cfg.AdminSecret).IssueToken("admin", 0)
	if err != nil {
		t.Fatal(err)
	}
	server := NewAuth(openTestDB(t), cfg.AdminSecret)
	if _, err := server.ValidateToken(minted); err != nil {
		t.Errorf("token minted by -issue-token should work on a fresh server: %v", err)
	}
}
