package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:            "8080",
			DBPath:          ":memory:",
			UploadDir:       "./data/uploads",
			MaxUploadBytes:  16 << 20,
			SessionTTL:      30 * 24 * time.Hour,
			DefaultCurrency: "UGX",
			LogLevel:        "info",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "missing database path",
			mutate:      func(c *Config) { c.DBPath = "" },
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name:        "missing upload directory",
			mutate:      func(c *Config) { c.UploadDir = "" },
			wantErr:     true,
			errorString: "upload directory cannot be empty",
		},
		{
			name:        "zero max upload size",
			mutate:      func(c *Config) { c.MaxUploadBytes = 0 },
			wantErr:     true,
			errorString: "invalid max upload size 0: must be at least 1 byte",
		},
		{
			name:        "max upload size too large",
			mutate:      func(c *Config) { c.MaxUploadBytes = 2 << 30 },
			wantErr:     true,
			errorString: "must be at most 1 GiB",
		},
		{
			name:        "session TTL too short",
			mutate:      func(c *Config) { c.SessionTTL = 30 * time.Second },
			wantErr:     true,
			errorString: "invalid session TTL 30s: must be at least 1 minute",
		},
		{
			name:        "invalid currency code",
			mutate:      func(c *Config) { c.DefaultCurrency = "SHILLING" },
			wantErr:     true,
			errorString: "must be a 3-letter code",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := Config{
		Port:            "abc",
		DBPath:          "",
		UploadDir:       "",
		MaxUploadBytes:  0,
		SessionTTL:      0,
		DefaultCurrency: "",
		LogLevel:        "nope",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Config.Validate() error = nil, want aggregated errors")
	}
	for _, want := range []string{"invalid port", "database path", "upload directory", "max upload size", "session TTL", "default currency", "log level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Config.Validate() error missing %q: %v", want, err)
		}
	}
}

func TestLoad(t *testing.T) {
	vars := []string{"PORT", "DB_PATH", "UPLOAD_DIR", "MAX_UPLOAD_BYTES", "SESSION_TTL", "SECURE_COOKIE", "DEFAULT_CURRENCY", "LOG_LEVEL"}

	originalVars := make(map[string]string, len(vars))
	for _, key := range vars {
		originalVars[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8080" {
			t.Errorf("Load() Port = %v, want 8080", cfg.Port)
		}
		if cfg.DBPath != "./data/forest.db" {
			t.Errorf("Load() DBPath = %v, want ./data/forest.db", cfg.DBPath)
		}
		if cfg.UploadDir != "./data/uploads" {
			t.Errorf("Load() UploadDir = %v, want ./data/uploads", cfg.UploadDir)
		}
		if cfg.MaxUploadBytes != 16<<20 {
			t.Errorf("Load() MaxUploadBytes = %v, want 16 MiB", cfg.MaxUploadBytes)
		}
		if cfg.SessionTTL != 30*24*time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 720h", cfg.SessionTTL)
		}
		if cfg.SecureCookie {
			t.Error("Load() SecureCookie = true, want false")
		}
		if cfg.DefaultCurrency != "UGX" {
			t.Errorf("Load() DefaultCurrency = %v, want UGX", cfg.DefaultCurrency)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("DB_PATH", "/tmp/test.db")
		os.Setenv("MAX_UPLOAD_BYTES", "1048576")
		os.Setenv("SESSION_TTL", "24h")
		os.Setenv("SECURE_COOKIE", "true")
		os.Setenv("DEFAULT_CURRENCY", "EUR")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DBPath != "/tmp/test.db" {
			t.Errorf("Load() DBPath = %v, want /tmp/test.db", cfg.DBPath)
		}
		if cfg.MaxUploadBytes != 1<<20 {
			t.Errorf("Load() MaxUploadBytes = %v, want 1 MiB", cfg.MaxUploadBytes)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 24h", cfg.SessionTTL)
		}
		if !cfg.SecureCookie {
			t.Error("Load() SecureCookie = false, want true")
		}
		if cfg.DefaultCurrency != "EUR" {
			t.Errorf("Load() DefaultCurrency = %v, want EUR", cfg.DefaultCurrency)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("MAX_UPLOAD_BYTES", "invalid")
		os.Setenv("SESSION_TTL", "invalid")
		os.Setenv("SECURE_COOKIE", "maybe")

		cfg := Load()

		if cfg.MaxUploadBytes != 16<<20 {
			t.Errorf("Load() MaxUploadBytes = %v, want 16 MiB (default for invalid input)", cfg.MaxUploadBytes)
		}
		if cfg.SessionTTL != 30*24*time.Hour {
			t.Errorf("Load() SessionTTL = %v, want 720h (default for invalid input)", cfg.SessionTTL)
		}
		if cfg.SecureCookie {
			t.Error("Load() SecureCookie = true, want false (default for invalid input)")
		}
	})
}
