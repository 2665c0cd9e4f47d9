// Package redis registers the kv backend that talks to a real Redis server.
package redis

import (
	"github.com/RogerJin0910/xredis/pkg/kv"
)

// New dials the primary at cfg.RedisURL and, when set, the replica at
// cfg.ReplicaURL. Connectivity is checked by kv.NewClientFromConfig.
func New(cfg kv.Config) (*kv.Client, error) {
	return kv.Dial(cfg.RedisURL, cfg.ReplicaURL, cfg)
}
