package structure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

const (
	// NoExpiration is reported by TTL when the key exists without an expiry.
	NoExpiration time.Duration = -1
	// Missing is reported by TTL when the key does not exist.
	Missing time.Duration = -2
)

// Base carries what every structure shares: the namespaced key, the
// configured ttl and the store connection.
type Base struct {
	kind   Kind
	key    string
	ttl    time.Duration
	client *kv.Client
	env    *env
}

func newBase(client *kv.Client, e *env, kind Kind, tag, name string, ttl time.Duration) *Base {
	return &Base{
		kind:   kind,
		key:    e.namespace + ":" + tag + ":" + name,
		ttl:    ttl,
		client: client,
		env:    e,
	}
}

// Name returns the namespaced store key.
func (b *Base) Name() string {
	return b.key
}

// Kind returns the structure kind the handle was built for.
func (b *Base) Kind() Kind {
	return b.kind
}

// ConfiguredTTL is the ttl applied on every refresh.
func (b *Base) ConfiguredTTL() time.Duration {
	return b.ttl
}

func (b *Base) base() *Base {
	return b
}

func (b *Base) cmd(role kv.Role) redis.Cmdable {
	return b.client.Cmd(role)
}

// Delete removes the whole record, not a single element of it.
func (b *Base) Delete(ctx context.Context) (int64, error) {
	n, err := b.cmd(kv.RolePrimary).Del(ctx, b.key).Result()
	return n, b.fail("delete", err)
}

// Exists checks the record on the replica role.
func (b *Base) Exists(ctx context.Context) (bool, error) {
	return b.ExistsOn(ctx, kv.RoleReplica)
}

// ExistsOn checks the record using the given role.
func (b *Base) ExistsOn(ctx context.Context, role kv.Role) (bool, error) {
	n, err := b.cmd(role).Exists(ctx, b.key).Result()
	if err != nil {
		return false, b.fail("exists", err)
	}
	return n > 0, nil
}

// TTL returns the remaining time to live, rounded to whole seconds.
// Replicas can report stale ttls, so this always reads the primary.
func (b *Base) TTL(ctx context.Context) (time.Duration, error) {
	d, err := b.cmd(kv.RolePrimary).TTL(ctx, b.key).Result()
	if err != nil {
		return 0, b.fail("ttl", err)
	}
	switch {
	case d == NoExpiration || d == Missing:
		return d, nil
	case d < 0:
		return Missing, nil
	}
	return d.Truncate(time.Second), nil
}

// Create re-asserts the remaining ttl on the record.
func (b *Base) Create(ctx context.Context) error {
	remaining, err := b.TTL(ctx)
	if err != nil {
		return err
	}
	_, err = b.SetTTL(ctx, remaining)
	return err
}

// Refresh sets the record's expiration to the configured ttl. It does nothing
// when the handle has no managed expiration.
func (b *Base) Refresh(ctx context.Context) (bool, error) {
	ok, err := b.SetTTL(ctx, b.ttl)
	if err != nil {
		b.env.logger.Warnw("TTL refresh failed", "key", b.key, "ttl", b.ttl, "error", err)
		return false, fmt.Errorf("refresh ttl: %w", err)
	}
	if ok && b.env.recorder != nil {
		b.env.recorder.RecordRefresh(ctx, string(b.kind))
	}
	return ok, nil
}

// SetTTL issues EXPIRE. A non-positive duration reports false without
// touching the store.
func (b *Base) SetTTL(ctx context.Context, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	ok, err := b.cmd(kv.RolePrimary).Expire(ctx, b.key, ttl).Result()
	return ok, b.fail("expire", err)
}

// refreshAfter runs Refresh when cond holds and folds its error into err.
func (b *Base) refreshAfter(ctx context.Context, cond bool) error {
	if !cond {
		return nil
	}
	_, err := b.Refresh(ctx)
	return err
}

// Multi opens a batch on the shared connection.
func (b *Base) Multi() error {
	return b.client.Multi()
}

// Exec commits the batch and returns the queued commands in order.
func (b *Base) Exec(ctx context.Context) ([]redis.Cmder, error) {
	return b.client.Exec(ctx)
}

// Discard drops the batch.
func (b *Base) Discard() error {
	return b.client.Discard()
}

// RandomKey returns any key held by the store.
func (b *Base) RandomKey(ctx context.Context, role kv.Role) (string, bool, error) {
	key, err := b.cmd(role).RandomKey(ctx).Result()
	return stringResult(key, b.fail("randomkey", err))
}

// fail wraps transport errors. redis.Nil passes through so callers can map it
// to an empty result.
func (b *Base) fail(op string, err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return fmt.Errorf("%s %s: %w", op, b.key, kv.Wrap(err))
}

// stringResult maps a missing reply to found=false.
func stringResult(v string, err error) (string, bool, error) {
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// env is the configuration handles built by one pool share.
type env struct {
	namespace string
	logger    *zap.SugaredLogger
	recorder  Recorder
}
