package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 10485760 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 10485760)
	}
	if cfg.Lookup.BaseURL != "http://interview.wpengine.io/v1/accounts" {
		t.Errorf("Lookup.BaseURL = %q", cfg.Lookup.BaseURL)
	}
	if cfg.Lookup.Timeout != 5*time.Second {
		t.Errorf("Lookup.Timeout = %v, want 5s", cfg.Lookup.Timeout)
	}
	if cfg.Lookup.KeyField != "account_id" {
		t.Errorf("Lookup.KeyField = %q, want %q", cfg.Lookup.KeyField, "account_id")
	}
	if cfg.Pipeline.Strict {
		t.Error("Pipeline.Strict = true, want false by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOOKUP_BASE_URL", "http://localhost:9999/accounts")
	t.Setenv("LOOKUP_TIMEOUT", "250ms")
	t.Setenv("LOOKUP_CONCURRENCY", "8")
	t.Setenv("PIPELINE_STRICT", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Lookup.BaseURL != "http://localhost:9999/accounts" {
		t.Errorf("Lookup.BaseURL = %q", cfg.Lookup.BaseURL)
	}
	if cfg.Lookup.Timeout != 250*time.Millisecond {
		t.Errorf("Lookup.Timeout = %v, want 250ms", cfg.Lookup.Timeout)
	}
	if cfg.Lookup.Concurrency != 8 {
		t.Errorf("Lookup.Concurrency = %d, want 8", cfg.Lookup.Concurrency)
	}
	if !cfg.Pipeline.Strict {
		t.Error("Pipeline.Strict = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("LOOKUP_TIMEOUT", "five seconds")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "LOOKUP_TIMEOUT") {
		t.Errorf("error should mention LOOKUP_TIMEOUT: %v", err)
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Upload: UploadConfig{MaxFileSize: 1, MaxConcurrent: 1, MaxWaitTime: time.Second},
		Lookup: LookupConfig{
			BaseURL:     "http://localhost/accounts",
			Timeout:     5 * time.Second,
			Concurrency: 4,
			KeyField:    "account_id",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 99999 },
			wantErr: "SERVER_PORT",
		},
		{
			name:    "relative lookup url",
			mutate:  func(c *Config) { c.Lookup.BaseURL = "/v1/accounts" },
			wantErr: "LOOKUP_BASE_URL",
		},
		{
			name:    "zero lookup timeout",
			mutate:  func(c *Config) { c.Lookup.Timeout = 0 },
			wantErr: "LOOKUP_TIMEOUT",
		},
		{
			name:    "empty key field",
			mutate:  func(c *Config) { c.Lookup.KeyField = "" },
			wantErr: "LOOKUP_KEY_FIELD",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "zero upload concurrency",
			mutate:  func(c *Config) { c.Upload.MaxConcurrent = 0 },
			wantErr: "UPLOAD_MAX_CONCURRENT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error should mention %s: %v", tt.wantErr, err)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"", 8080, ":8080"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
	}

	for _, tt := range tests {
		cfg := &ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q, port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
