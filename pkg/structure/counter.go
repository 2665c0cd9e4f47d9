package structure

import (
	"context"
	"time"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

// DefaultCounterTTL is used for counters requested with a zero ttl.
const DefaultCounterTTL = 30 * 24 * time.Hour

const counterPrefix = "counter:"

// Counter is a sliding-window integer: every increment or decrement pushes
// the expiration back to the full ttl, whatever the resulting value.
type Counter struct {
	*Base
	value *String
}

// NewCounter builds an unpooled Counter handle.
func NewCounter(client *kv.Client, name string, ttl time.Duration, opts ...Option) *Counter {
	return newCounter(client, newEnv(opts), name, ttl)
}

func newCounter(client *kv.Client, e *env, name string, ttl time.Duration) *Counter {
	if ttl == 0 {
		ttl = DefaultCounterTTL
	}
	value := newString(client, e, counterPrefix+name, ttl)
	value.kind = KindCounter
	return &Counter{Base: value.Base, value: value}
}

// Get returns the current count; found is false when the counter is unset.
func (c *Counter) Get(ctx context.Context) (string, bool, error) {
	return c.value.Get(ctx)
}

// Set overwrites the count and resets the ttl.
func (c *Counter) Set(ctx context.Context, n int64) (bool, error) {
	return c.value.Set(ctx, n)
}

// Incr adds delta, refreshes the ttl and returns the new count.
func (c *Counter) Incr(ctx context.Context, delta int64) (int64, error) {
	n, err := c.value.incrBy(ctx, delta)
	if err != nil {
		return 0, err
	}
	return n, c.refreshAfter(ctx, true)
}

// Decr subtracts delta, refreshes the ttl and returns the new count.
func (c *Counter) Decr(ctx context.Context, delta int64) (int64, error) {
	n, err := c.value.decrBy(ctx, delta)
	if err != nil {
		return 0, err
	}
	return n, c.refreshAfter(ctx, true)
}
