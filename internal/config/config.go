package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

type Config struct {
	Env      string `mapstructure:"XREDIS_ENV"`
	LogLevel string `mapstructure:"XREDIS_LOG_LEVEL"`
	HTTPAddr string `mapstructure:"XREDIS_HTTP_ADDR"`

	RequestTimeout time.Duration `mapstructure:"XREDIS_REQUEST_TIMEOUT"`

	Store     StoreConfig     `mapstructure:",squash"`
	Structure StructureConfig `mapstructure:",squash"`
	Security  SecurityConfig  `mapstructure:",squash"`
}

type StoreConfig struct {
	Backend             string        `mapstructure:"XREDIS_BACKEND"` // "redis", "memory"
	RedisURL            string        `mapstructure:"XREDIS_REDIS_URL"`
	ReplicaURL          string        `mapstructure:"XREDIS_REPLICA_URL"`
	PoolSize            int           `mapstructure:"XREDIS_POOL_SIZE"`
	DialTimeout         time.Duration `mapstructure:"XREDIS_DIAL_TIMEOUT"`
	ReadTimeout         time.Duration `mapstructure:"XREDIS_READ_TIMEOUT"`
	WriteTimeout        time.Duration `mapstructure:"XREDIS_WRITE_TIMEOUT"`
	StartupProbeTimeout time.Duration `mapstructure:"XREDIS_STARTUP_PROBE_TIMEOUT"`
}

type StructureConfig struct {
	Namespace string `mapstructure:"XREDIS_NAMESPACE"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"XREDIS_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"XREDIS_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
		filepath.Join("..", "..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

func Load() (*Config, error) {
	loadDotEnvFiles()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("XREDIS_ENV", "dev")
	v.SetDefault("XREDIS_LOG_LEVEL", "")
	v.SetDefault("XREDIS_HTTP_ADDR", ":8090")
	v.SetDefault("XREDIS_REQUEST_TIMEOUT", "10s")
	v.SetDefault("XREDIS_BACKEND", string(kv.BackendRedis))
	v.SetDefault("XREDIS_REDIS_URL", "redis://127.0.0.1:6379/0")
	v.SetDefault("XREDIS_REPLICA_URL", "")
	v.SetDefault("XREDIS_POOL_SIZE", 10)
	v.SetDefault("XREDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("XREDIS_READ_TIMEOUT", "3s")
	v.SetDefault("XREDIS_WRITE_TIMEOUT", "3s")
	v.SetDefault("XREDIS_STARTUP_PROBE_TIMEOUT", "2s")
	v.SetDefault("XREDIS_NAMESPACE", "XRedis")
	v.SetDefault("XREDIS_RATE_LIMIT_RPM", 600)
	v.SetDefault("XREDIS_CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Comma-separated list
	if origins := v.GetString("XREDIS_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("XREDIS_CORS_ALLOWED_ORIGINS", splitList(origins))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch kv.Backend(c.Store.Backend) {
	case kv.BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("XREDIS_REDIS_URL is required for the redis backend")
		}
	case kv.BackendMemory:
	default:
		return fmt.Errorf("invalid XREDIS_BACKEND %q (must be redis or memory)", c.Store.Backend)
	}
	if c.Store.PoolSize <= 0 {
		return fmt.Errorf("XREDIS_POOL_SIZE must be positive, got %d", c.Store.PoolSize)
	}
	if c.Structure.Namespace == "" {
		return fmt.Errorf("XREDIS_NAMESPACE must not be empty")
	}
	if strings.Contains(c.Structure.Namespace, ":") {
		return fmt.Errorf("XREDIS_NAMESPACE %q must not contain ':'", c.Structure.Namespace)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("XREDIS_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.Security.RateLimitRPM < 6 {
		return fmt.Errorf("XREDIS_RATE_LIMIT_RPM must be at least 6, got %d", c.Security.RateLimitRPM)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// KV builds the store configuration handed to kv.NewShared.
func (c *Config) KV(logger *zap.SugaredLogger, recorder kv.CommandRecorder) kv.Config {
	return kv.Config{
		Backend:             kv.Backend(c.Store.Backend),
		RedisURL:            c.Store.RedisURL,
		ReplicaURL:          c.Store.ReplicaURL,
		DialTimeout:         c.Store.DialTimeout,
		ReadTimeout:         c.Store.ReadTimeout,
		WriteTimeout:        c.Store.WriteTimeout,
		PoolSize:            c.Store.PoolSize,
		StartupProbeTimeout: c.Store.StartupProbeTimeout,
		Logger:              logger,
		Recorder:            recorder,
	}
}
