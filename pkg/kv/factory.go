package kv

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backend represents the storage backend type
type Backend string

const (
	// BackendMemory runs an embedded Redis-compatible server in process
	BackendMemory Backend = "memory"
	// BackendRedis uses Redis as the backend
	BackendRedis Backend = "redis"
)

// Config holds configuration for creating a Client
type Config struct {
	// Backend specifies which storage backend to use
	Backend Backend

	// RedisURL is the connection string for the primary (required when Backend is "redis")
	// Format: redis://localhost:6379/0 or redis://:password@localhost:6379/1
	RedisURL string

	// ReplicaURL optionally points replica-role reads at a read replica.
	// Empty routes every read to the primary.
	ReplicaURL string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PoolSize is passed through to go-redis. Default: 10
	PoolSize int

	// StartupProbeTimeout bounds the initial PING. Default: 2 seconds
	StartupProbeTimeout time.Duration

	// Logger receives connection and command failures. Nil disables logging.
	Logger *zap.SugaredLogger

	// Recorder receives per-command measurements. Nil disables them.
	Recorder CommandRecorder
}

// BackendFactory builds a Client for one backend
type BackendFactory func(cfg Config) (*Client, error)

var (
	factoriesMu sync.RWMutex
	// factories holds registered backend factories
	factories = make(map[Backend]BackendFactory)
)

// RegisterBackend registers a client factory for a given backend
func RegisterBackend(backend Backend, factory BackendFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[backend] = factory
}

func registeredBackends() string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for b := range factories {
		names = append(names, string(b))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (cfg Config) withDefaults() Config {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	if cfg.StartupProbeTimeout == 0 {
		cfg.StartupProbeTimeout = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return cfg
}

// NewClientFromConfig creates a Client for the configured backend and checks
// that it answers PING before handing it out.
func NewClientFromConfig(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	factoriesMu.RLock()
	factory, exists := factories[cfg.Backend]
	factoriesMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unsupported backend: %q (registered: %s)", cfg.Backend, registeredBackends())
	}

	client, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Backend, err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.StartupProbeTimeout)
	defer cancel()

	if err := client.Ping(probeCtx); err != nil {
		cfg.Logger.Errorw("Store health check failed at startup", "backend", cfg.Backend, "error", err)
		_ = client.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Backend, err)
	}

	cfg.Logger.Infow("Store connection established", "backend", cfg.Backend, "replica", cfg.ReplicaURL != "")
	return client, nil
}
