package structure

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

const tagString = "Str"

// String is a scalar value under one key.
type String struct {
	*Base
}

// NewString builds an unpooled String handle.
func NewString(client *kv.Client, name string, ttl time.Duration, opts ...Option) *String {
	return newString(client, newEnv(opts), name, ttl)
}

func newString(client *kv.Client, e *env, name string, ttl time.Duration) *String {
	return &String{Base: newBase(client, e, KindString, tagString, name, ttl)}
}

// keyFor namespaces another String name the same way this handle is named.
func (s *String) keyFor(name string) string {
	return s.env.namespace + ":" + tagString + ":" + name
}

// Get returns the value; found is false when the key does not exist.
func (s *String) Get(ctx context.Context) (string, bool, error) {
	v, err := s.cmd(kv.RoleReplica).Get(ctx, s.key).Result()
	return stringResult(v, s.fail("get", err))
}

// Set stores value, with the configured ttl when there is one.
func (s *String) Set(ctx context.Context, value interface{}) (bool, error) {
	if s.ttl > 0 {
		return s.SetEX(ctx, value)
	}
	err := s.cmd(kv.RolePrimary).Set(ctx, s.key, value, 0).Err()
	if err != nil {
		return false, s.fail("set", err)
	}
	return true, nil
}

// SetEX stores value and sets the configured ttl in one command.
func (s *String) SetEX(ctx context.Context, value interface{}) (bool, error) {
	err := s.cmd(kv.RolePrimary).SetEx(ctx, s.key, value, s.ttl).Err()
	if err != nil {
		return false, s.fail("setex", err)
	}
	return true, nil
}

// SetNX stores value only when the key is absent and refreshes on success.
func (s *String) SetNX(ctx context.Context, value interface{}) (bool, error) {
	ok, err := s.cmd(kv.RolePrimary).SetNX(ctx, s.key, value, 0).Result()
	if err != nil {
		return false, s.fail("setnx", err)
	}
	return ok, s.refreshAfter(ctx, ok)
}

// GetSet swaps in value, refreshes, and returns the previous value.
func (s *String) GetSet(ctx context.Context, value interface{}) (string, bool, error) {
	old, err := s.cmd(kv.RolePrimary).GetSet(ctx, s.key, value).Result()
	old, found, err := stringResult(old, s.fail("getset", err))
	if err != nil {
		return "", false, err
	}
	return old, found, s.refreshAfter(ctx, true)
}

// Append adds value to the end and returns the new length.
func (s *String) Append(ctx context.Context, value string) (int64, error) {
	n, err := s.cmd(kv.RolePrimary).Append(ctx, s.key, value).Result()
	return n, s.fail("append", err)
}

// Incr adds delta and returns the new value. The ttl is refreshed only when
// the result equals delta, which is how a first write to an empty key looks.
func (s *String) Incr(ctx context.Context, delta int64) (int64, error) {
	n, err := s.incrBy(ctx, delta)
	if err != nil {
		return 0, err
	}
	return n, s.refreshAfter(ctx, n == delta)
}

// Decr subtracts delta and returns the new value, refreshing only when the
// result is -delta.
func (s *String) Decr(ctx context.Context, delta int64) (int64, error) {
	n, err := s.decrBy(ctx, delta)
	if err != nil {
		return 0, err
	}
	return n, s.refreshAfter(ctx, n == -delta)
}

func (s *String) incrBy(ctx context.Context, delta int64) (int64, error) {
	n, err := s.cmd(kv.RolePrimary).IncrBy(ctx, s.key, delta).Result()
	return n, s.fail("incrby", err)
}

func (s *String) decrBy(ctx context.Context, delta int64) (int64, error) {
	n, err := s.cmd(kv.RolePrimary).DecrBy(ctx, s.key, delta).Result()
	return n, s.fail("decrby", err)
}

// MGet reads several String names at once. Missing names yield nil entries.
func (s *String) MGet(ctx context.Context, names ...string) ([]interface{}, error) {
	if len(names) == 0 {
		return []interface{}{}, nil
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.keyFor(name)
	}
	vals, err := s.cmd(kv.RoleReplica).MGet(ctx, keys...).Result()
	return vals, s.fail("mget", err)
}

// MSet writes several String names and gives each the configured ttl,
// all in one transaction.
func (s *String) MSet(ctx context.Context, values map[string]interface{}) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	pairs := s.namespacedPairs(values)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.MSet(ctx, pairs...)
		s.expireAll(ctx, pipe, values)
		return nil
	})
	if err != nil {
		return false, s.fail("mset", err)
	}
	return true, nil
}

// MSetNX writes several String names only if none of them exist. The ttl is
// applied only when the write happened.
func (s *String) MSetNX(ctx context.Context, values map[string]interface{}) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	ok, err := s.cmd(kv.RolePrimary).MSetNX(ctx, s.namespacedPairs(values)...).Result()
	if err != nil || !ok {
		return false, s.fail("msetnx", err)
	}
	if s.ttl <= 0 {
		return true, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.expireAll(ctx, pipe, values)
		return nil
	})
	if err != nil {
		return true, s.fail("expire", err)
	}
	return true, nil
}

func (s *String) namespacedPairs(values map[string]interface{}) []interface{} {
	pairs := make([]interface{}, 0, len(values)*2)
	for name, v := range values {
		pairs = append(pairs, s.keyFor(name), v)
	}
	return pairs
}

func (s *String) expireAll(ctx context.Context, pipe redis.Pipeliner, values map[string]interface{}) {
	if s.ttl <= 0 {
		return
	}
	for name := range values {
		pipe.Expire(ctx, s.keyFor(name), s.ttl)
	}
}

// StrLen returns the length of the value, 0 when missing.
func (s *String) StrLen(ctx context.Context) (int64, error) {
	n, err := s.cmd(kv.RoleReplica).StrLen(ctx, s.key).Result()
	return n, s.fail("strlen", err)
}
