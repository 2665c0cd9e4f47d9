package structure

import (
	"context"
	"strconv"
	"time"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

const tagHash = "Hash"

// Hash is a field-keyed map under one key.
type Hash struct {
	*Base
}

// NewHash builds an unpooled Hash handle.
func NewHash(client *kv.Client, name string, ttl time.Duration, opts ...Option) *Hash {
	return newHash(client, newEnv(opts), name, ttl)
}

func newHash(client *kv.Client, e *env, name string, ttl time.Duration) *Hash {
	return &Hash{Base: newBase(client, e, KindHash, tagHash, name, ttl)}
}

// Get returns one field; found is false when the field or hash is missing.
func (h *Hash) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := h.cmd(kv.RoleReplica).HGet(ctx, h.key, field).Result()
	return stringResult(v, h.fail("hget", err))
}

// MGet returns the present fields among the requested ones. Requested fields
// that are neither strings nor integers are dropped before the read.
func (h *Hash) MGet(ctx context.Context, fields ...interface{}) (map[string]string, error) {
	names := scalarFields(fields)
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}

	vals, err := h.cmd(kv.RoleReplica).HMGet(ctx, h.key, names...).Result()
	if err != nil {
		return nil, h.fail("hmget", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[names[i]] = s
		}
	}
	return out, nil
}

func scalarFields(fields []interface{}) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		switch v := f.(type) {
		case string:
			names = append(names, v)
		case int:
			names = append(names, strconv.Itoa(v))
		case int8:
			names = append(names, strconv.FormatInt(int64(v), 10))
		case int16:
			names = append(names, strconv.FormatInt(int64(v), 10))
		case int32:
			names = append(names, strconv.FormatInt(int64(v), 10))
		case int64:
			names = append(names, strconv.FormatInt(v, 10))
		case uint:
			names = append(names, strconv.FormatUint(uint64(v), 10))
		case uint8:
			names = append(names, strconv.FormatUint(uint64(v), 10))
		case uint16:
			names = append(names, strconv.FormatUint(uint64(v), 10))
		case uint32:
			names = append(names, strconv.FormatUint(uint64(v), 10))
		case uint64:
			names = append(names, strconv.FormatUint(v, 10))
		}
	}
	return names
}

// GetAll returns every field and value.
func (h *Hash) GetAll(ctx context.Context) (map[string]string, error) {
	m, err := h.cmd(kv.RoleReplica).HGetAll(ctx, h.key).Result()
	return m, h.fail("hgetall", err)
}

// Keys returns the field names.
func (h *Hash) Keys(ctx context.Context) ([]string, error) {
	keys, err := h.cmd(kv.RoleReplica).HKeys(ctx, h.key).Result()
	return keys, h.fail("hkeys", err)
}

// Vals returns the field values.
func (h *Hash) Vals(ctx context.Context) ([]string, error) {
	vals, err := h.cmd(kv.RoleReplica).HVals(ctx, h.key).Result()
	return vals, h.fail("hvals", err)
}

// Count returns the number of fields.
func (h *Hash) Count(ctx context.Context) (int64, error) {
	n, err := h.cmd(kv.RoleReplica).HLen(ctx, h.key).Result()
	return n, h.fail("hlen", err)
}

// Contains reports whether field is present.
func (h *Hash) Contains(ctx context.Context, field string) (bool, error) {
	ok, err := h.cmd(kv.RoleReplica).HExists(ctx, h.key, field).Result()
	return ok, h.fail("hexists", err)
}

// Set writes one field and refreshes. It returns 1 when the field is new and
// 0 when an existing value was replaced.
func (h *Hash) Set(ctx context.Context, field string, value interface{}) (int64, error) {
	n, err := h.cmd(kv.RolePrimary).HSet(ctx, h.key, field, value).Result()
	if err != nil {
		return 0, h.fail("hset", err)
	}
	return n, h.refreshAfter(ctx, true)
}

// SetNX writes field only when absent, refreshing when it did.
func (h *Hash) SetNX(ctx context.Context, field string, value interface{}) (bool, error) {
	ok, err := h.cmd(kv.RolePrimary).HSetNX(ctx, h.key, field, value).Result()
	if err != nil {
		return false, h.fail("hsetnx", err)
	}
	return ok, h.refreshAfter(ctx, ok)
}

// MSet writes several fields and refreshes.
func (h *Hash) MSet(ctx context.Context, values map[string]interface{}) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	ok, err := h.cmd(kv.RolePrimary).HMSet(ctx, h.key, values).Result()
	if err != nil {
		return false, h.fail("hmset", err)
	}
	return ok, h.refreshAfter(ctx, ok)
}

// Del removes one field. Deleting never extends the hash's life.
func (h *Hash) Del(ctx context.Context, field string) (int64, error) {
	return h.MDel(ctx, field)
}

// MDel removes several fields and returns how many existed.
func (h *Hash) MDel(ctx context.Context, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	n, err := h.cmd(kv.RolePrimary).HDel(ctx, h.key, fields...).Result()
	return n, h.fail("hdel", err)
}

// IncrBy adds delta to field. The ttl is refreshed only when the result
// equals delta.
func (h *Hash) IncrBy(ctx context.Context, field string, delta int64) (int64, error) {
	n, err := h.cmd(kv.RolePrimary).HIncrBy(ctx, h.key, field, delta).Result()
	if err != nil {
		return 0, h.fail("hincrby", err)
	}
	return n, h.refreshAfter(ctx, n == delta)
}

// IncrByFloat is IncrBy for float fields.
func (h *Hash) IncrByFloat(ctx context.Context, field string, delta float64) (float64, error) {
	f, err := h.cmd(kv.RolePrimary).HIncrByFloat(ctx, h.key, field, delta).Result()
	if err != nil {
		return 0, h.fail("hincrbyfloat", err)
	}
	return f, h.refreshAfter(ctx, f == delta)
}
