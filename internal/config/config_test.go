package config

import (
	"testing"
	"time"
)

func TestValidate_RequiresDatabaseURL(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidate_RequiresSecretOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production", DatabaseURL: "postgres://localhost/hms"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}
}

func TestValidate_DevWithoutSecret(t *testing.T) {
	cfg := &Config{Env: "development", DatabaseURL: "postgres://localhost/hms"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	cfg := &Config{JWTExpiry: "2h"}
	if got := cfg.TokenExpiry(); got != 2*time.Hour {
		t.Errorf("expected 2h, got %v", got)
	}
}

func TestTokenExpiry_MalformedFallsBack(t *testing.T) {
	cfg := &Config{JWTExpiry: "soon"}
	if got := cfg.TokenExpiry(); got != 24*time.Hour {
		t.Errorf("expected 24h fallback, got %v", got)
	}
}

func TestExtractCallTimeout_Default(t *testing.T) {
	cfg := &Config{}
	if got := cfg.ExtractCallTimeout(); got != 15*time.Second {
		t.Errorf("expected 15s fallback, got %v", got)
	}
}
