// Package config loads server configuration from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
)

const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	Mode            string        `koanf:"mode" validate:"omitempty,oneof=debug release test"`
	Environment     string        `koanf:"environment"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	PingTimeout     time.Duration `koanf:"ping_timeout" validate:"gt=0"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

type RateLimitConfig struct {
	Enabled       bool          `koanf:"enabled"`
	MaxRequests   int           `koanf:"max_requests" validate:"min=1"`
	Window        time.Duration `koanf:"window" validate:"gt=0"`
	ClientHeaders []string      `koanf:"client_headers" validate:"min=1"`
}

type CORSConfig struct {
	AllowedOrigins []string      `koanf:"allowed_origins" validate:"min=1"`
	MaxAge         time.Duration `koanf:"max_age"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Environment:     "production",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 10 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     3 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			MaxRequests:   100,
			Window:        time.Minute,
			ClientHeaders: []string{"CF-Connecting-IP", "X-Forwarded-For"},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         24 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// envKeys maps recognised environment variables onto config paths.
var envKeys = map[string]string{
	"APP_ADDR":                  "server.addr",
	"GIN_MODE":                  "server.mode",
	"ENVIRONMENT":               "server.environment",
	"SERVER_READ_TIMEOUT":       "server.read_timeout",
	"SERVER_WRITE_TIMEOUT":      "server.write_timeout",
	"SERVER_SHUTDOWN_TIMEOUT":   "server.shutdown_timeout",
	"DATABASE_URL":              "database.url",
	"DB_MAX_OPEN_CONNS":         "database.max_open_conns",
	"DB_MAX_IDLE_CONNS":         "database.max_idle_conns",
	"DB_CONN_MAX_LIFETIME":      "database.conn_max_lifetime",
	"DB_BREAKER_FAILURES":       "database.breaker_failures",
	"DB_BREAKER_TIMEOUT":        "database.breaker_timeout",
	"RATE_LIMIT_ENABLED":        "rate_limit.enabled",
	"RATE_LIMIT_MAX_REQUESTS":   "rate_limit.max_requests",
	"RATE_LIMIT_WINDOW":         "rate_limit.window",
	"RATE_LIMIT_CLIENT_HEADERS": "rate_limit.client_headers",
	"ALLOWED_ORIGINS":           "cors.allowed_origins",
	"LOG_LEVEL":                 "logging.level",
	"LOG_FORMAT":                "logging.format",
}

var sliceKeys = []string{"cors.allowed_origins", "rate_limit.client_headers"}

// Load builds the configuration. path overrides CONFIG_PATH when non-empty;
// a missing file is not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if explicit {
			return nil, domain.ConfigurationError{Component: "config", Msg: fmt.Sprintf("config file %s: %v", path, err)}
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitLists(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envValue maps a variable onto its config path. Unrecognised or empty
// variables map to "" and are skipped.
func envValue(name, value string) (string, any) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return envKeys[name], strings.TrimSpace(value)
}

func splitLists(k *koanf.Koanf) error {
	for _, path := range sliceKeys {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return domain.ConfigurationError{Component: "config", Msg: err.Error()}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
