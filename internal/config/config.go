package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "FOODBLOG_"
	// ConfigPathEnvVar names an optional YAML config file.
	ConfigPathEnvVar = "CONFIG_PATH"
	defaultFile      = "foodblog.yaml"
)

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Log         LogConfig         `koanf:"log"`
	Spoonacular SpoonacularConfig `koanf:"spoonacular"`
	Redis       RedisConfig       `koanf:"redis"`
	Cache       CacheConfig       `koanf:"cache"`
	Images      ImagesConfig      `koanf:"images"`
	Admin       AdminConfig       `koanf:"admin"`
}

type ServerConfig struct {
	Port    int    `koanf:"port"`
	BaseURL string `koanf:"base_url"`
	// SecureCookies sets the Secure flag on session cookies.
	SecureCookies bool `koanf:"secure_cookies"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text or json
}

type SpoonacularConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type CacheConfig struct {
	SearchTTL time.Duration `koanf:"search_ttl"`
}

type ImagesConfig struct {
	Endpoint      string `koanf:"endpoint"`
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	AccessKey     string `koanf:"access_key"`
	SecretKey     string `koanf:"secret_key"`
	PublicBaseURL string `koanf:"public_base_url"`
}

// AdminConfig bootstraps an admin account at startup when both fields are set.
type AdminConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

func defaultConfig() Config {
	return Config{
		Server:      ServerConfig{Port: 8080, BaseURL: "http://localhost:8080"},
		Database:    DatabaseConfig{Path: "foodblog.db"},
		Log:         LogConfig{Level: "info", Format: "text"},
		Spoonacular: SpoonacularConfig{BaseURL: "https://api.spoonacular.com", Timeout: 10 * time.Second},
		Cache:       CacheConfig{SearchTTL: time.Hour},
		Images:      ImagesConfig{Region: "us-east-1"},
	}
}

// Load reads configuration from defaults, then the YAML file named by
// CONFIG_PATH (or ./foodblog.yaml if present), then FOODBLOG_* environment
// variables.
func Load() (*Config, error) {
	path := os.Getenv(ConfigPathEnvVar)
	if path == "" {
		if _, err := os.Stat(defaultFile); err == nil {
			path = defaultFile
		}
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps FOODBLOG_SPOONACULAR_API_KEY to spoonacular.api_key.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Spoonacular.Timeout <= 0 {
		errs = append(errs, errors.New("spoonacular.timeout must be positive"))
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		errs = append(errs, errors.New("admin.username and admin.password must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
