package config

import "testing"

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("expected PORT override, got %s", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDev() {
		t.Fatalf("expected development default, got %s", cfg.Env)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Fatalf("expected pool defaults, got %d/%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "production"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("production without JWT_SECRET must fail validation")
	}

	cfg = &Config{Env: "production", JWTSecret: "short"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("short secrets must fail validation")
	}

	cfg = &Config{Env: "production", JWTSecret: "0123456789abcdef"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg = &Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development runs without a secret: %v", err)
	}
}
