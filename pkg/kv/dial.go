package kv

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ParseOptions turns a redis:// URL, or a bare host:port[/db], into go-redis
// options carrying the timeouts and pool size from cfg.
func ParseOptions(rawURL string, cfg Config) (*redis.Options, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		// Fallback for simple address format
		u, parseErr := url.Parse("redis://" + rawURL)
		if parseErr != nil || u.Host == "" {
			return nil, fmt.Errorf("parse redis url %q: %w", rawURL, err)
		}

		db := 0
		if u.Path != "" && u.Path != "/" {
			if n, dbErr := strconv.Atoi(u.Path[1:]); dbErr == nil {
				db = n
			}
		}

		opt = &redis.Options{Addr: u.Host, DB: db}
		if u.User != nil {
			if password, ok := u.User.Password(); ok {
				opt.Password = password
			}
		}
	}

	cfg = cfg.withDefaults()
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	opt.PoolSize = cfg.PoolSize
	return opt, nil
}

// Dial builds a Client from a primary URL and an optional replica URL.
// Backends call it after working out where the server lives.
func Dial(primaryURL, replicaURL string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	primaryOpts, err := ParseOptions(primaryURL, cfg)
	if err != nil {
		return nil, err
	}
	primary := redis.NewClient(primaryOpts)
	primary.AddHook(newCommandHook(RolePrimary, cfg.Logger, cfg.Recorder))

	var replica redis.UniversalClient
	if replicaURL != "" {
		replicaOpts, err := ParseOptions(replicaURL, cfg)
		if err != nil {
			_ = primary.Close()
			return nil, fmt.Errorf("replica: %w", err)
		}
		rc := redis.NewClient(replicaOpts)
		rc.AddHook(newCommandHook(RoleReplica, cfg.Logger, cfg.Recorder))
		replica = rc
	}

	return NewClient(primary, replica, cfg.Logger), nil
}
