package config

import (
	"errors"
	"testing"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/common/constants"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", constants.TestJWTSecret)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("TOKEN_TTL", "")

	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != constants.DefaultHTTPPort {
		t.Errorf("expected port %s, got %s", constants.DefaultHTTPPort, cfg.HTTPPort)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("expected bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if cfg.SQLitePath != constants.DefaultSQLitePath {
		t.Errorf("expected default sqlite path, got %s", cfg.SQLitePath)
	}
}

func TestLoadAppConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", constants.TestJWTSecret)
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://localhost/tasks")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StorageDriver != DriverPostgres {
		t.Errorf("expected postgres driver, got %s", cfg.StorageDriver)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h, got %v", cfg.TokenTTL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.HTTPPort)
	}
	if cfg.BcryptCost != constants.DefaultBcryptCost {
		t.Errorf("invalid int should fall back to default, got %d", cfg.BcryptCost)
	}
}

func TestLoadAppConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"JWT_SECRET": "", "STORAGE_DRIVER": "sqlite"},
			wantErr: ErrMissingRequiredEnv,
		},
		{
			name:    "short secret",
			env:     map[string]string{"JWT_SECRET": "short", "STORAGE_DRIVER": "sqlite"},
			wantErr: ErrInvalidJWTSecret,
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"JWT_SECRET": constants.TestJWTSecret, "STORAGE_DRIVER": "postgres", "DATABASE_URL": ""},
			wantErr: ErrMissingRequiredEnv,
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"JWT_SECRET": constants.TestJWTSecret, "STORAGE_DRIVER": "mongo"},
			wantErr: ErrInvalidDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadAppConfig()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
