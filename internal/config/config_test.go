package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL",
		"DATABASE_URL", "REDIS_URL", "JWT_SECRET",
		"ACCESS_TOKEN_TTL", "SHUTDOWN_TIMEOUT", "IDEMPOTENCY_TTL",
		"DB_MAX_CONNS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsDev() {
		t.Fatalf("default env %q should be development", cfg.Env)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("AccessTokenTTL = %s, want 30m", cfg.AccessTokenTTL)
	}
	if cfg.ShutdownPeriod != 10*time.Second {
		t.Fatalf("ShutdownPeriod = %s, want 10s", cfg.ShutdownPeriod)
	}
	if cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("IdempotencyTTL = %s, want 24h", cfg.IdempotencyTTL)
	}
	if cfg.DBMaxConns != 8 {
		t.Fatalf("DBMaxConns = %d, want 8", cfg.DBMaxConns)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("development fallback JWT secret not applied")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "45m")
	t.Setenv("DB_MAX_CONNS", "32")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccessTokenTTL != 45*time.Minute {
		t.Fatalf("AccessTokenTTL = %s, want 45m", cfg.AccessTokenTTL)
	}
	if cfg.DBMaxConns != 32 {
		t.Fatalf("DBMaxConns = %d, want 32", cfg.DBMaxConns)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_MAX_CONNS", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric DB_MAX_CONNS")
	}

	clearEnv(t)
	t.Setenv("DB_MAX_CONNS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive DB_MAX_CONNS")
	}

	clearEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable ACCESS_TOKEN_TTL")
	}
}

func TestLoadRequiresSecretsOutsideDev(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing in production")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/atlas")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("JWT_SECRET", "prod-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDev() {
		t.Fatalf("env %q misclassified as development", cfg.Env)
	}
}
