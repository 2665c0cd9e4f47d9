package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterDefaults(t *testing.T) {
	client, _, _ := newTestClient(t)

	c := NewCounter(client, "hits", 0)
	assert.Equal(t, DefaultCounterTTL, c.ConfiguredTTL())
	assert.Equal(t, KindCounter, c.Kind())
	assert.Equal(t, "XRedis:Str:counter:hits", c.Name())

	unmanaged := NewCounter(client, "forever", -1)
	assert.Equal(t, time.Duration(-1), unmanaged.ConfiguredTTL())
}

func TestCounterSlidingWindow(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	c := NewCounter(client, "visits", time.Minute)
	plain := NewString(client, "visits", time.Minute)

	_, err := c.Incr(ctx, 1)
	require.NoError(t, err)
	_, err = plain.Incr(ctx, 1)
	require.NoError(t, err)

	srv.FastForward(30 * time.Second)

	n, err := c.Incr(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	_, err = plain.Incr(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, srv.TTL(c.Name()))
	assert.Equal(t, 30*time.Second, srv.TTL(plain.Name()))

	srv.FastForward(30 * time.Second)
	n, err = c.Decr(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), n)
	assert.Equal(t, time.Minute, srv.TTL(c.Name()))
}

func TestCounterGetAndSet(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	c := NewCounter(client, "score", time.Hour)

	_, found, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := c.Set(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	v, found, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "5", v)
	assert.Equal(t, time.Hour, srv.TTL(c.Name()))
}

func TestCounterWithoutExpiration(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	c := NewCounter(client, "forever", -1)

	_, err := c.Incr(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), srv.TTL(c.Name()))
}

func TestCounterAndStringDivergeFromFive(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	c := NewCounter(client, "five", time.Minute)
	s := NewString(client, "five", time.Minute)

	_, err := c.Set(ctx, 5)
	require.NoError(t, err)
	_, err = s.Set(ctx, 5)
	require.NoError(t, err)

	srv.FastForward(30 * time.Second)

	n, err := c.Incr(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	n, err = s.Incr(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	assert.Equal(t, time.Minute, srv.TTL(c.Name()))
	assert.Equal(t, 30*time.Second, srv.TTL(s.Name()))
}
