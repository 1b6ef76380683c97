package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "foodblog.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Spoonacular.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Spoonacular.Timeout)
	}
	if cfg.Cache.SearchTTL != time.Hour {
		t.Errorf("search ttl = %v", cfg.Cache.SearchTTL)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("addr = %q", cfg.Addr())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FOODBLOG_SERVER_PORT", "9090")
	t.Setenv("FOODBLOG_SPOONACULAR_API_KEY", "secret")
	t.Setenv("FOODBLOG_SPOONACULAR_TIMEOUT", "3s")
	t.Setenv("FOODBLOG_REDIS_ADDR", "localhost:6379")
	t.Setenv("FOODBLOG_IMAGES_PUBLIC_BASE_URL", "https://cdn.example.com")

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Spoonacular.APIKey != "secret" {
		t.Errorf("api key = %q", cfg.Spoonacular.APIKey)
	}
	if cfg.Spoonacular.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Spoonacular.Timeout)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Images.PublicBaseURL != "https://cdn.example.com" {
		t.Errorf("public base url = %q", cfg.Images.PublicBaseURL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodblog.yaml")
	content := `
server:
  port: 7000
log:
  level: debug
admin:
  username: root
  password: hunter2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FOODBLOG_LOG_LEVEL", "warn")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want env override warn", cfg.Log.Level)
	}
	if cfg.Admin.Username != "root" || cfg.Admin.Password != "hunter2" {
		t.Errorf("admin = %+v", cfg.Admin)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"no db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"half admin", func(c *Config) { c.Admin.Username = "root" }, "admin.username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
