package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringGetSet(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "greeting", time.Minute)

	_, found, err := s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := s.Set(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, ok)

	v, found, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", v)
	assert.Equal(t, time.Minute, srv.TTL(s.Name()))

	n, err := s.Append(ctx, " world")
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	n, err = s.StrLen(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
}

func TestStringSetWithoutTTL(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "plain", 0)

	_, err := s.Set(ctx, 42)
	require.NoError(t, err)

	got, err := srv.Get(s.Name())
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Equal(t, time.Duration(0), srv.TTL(s.Name()))
}

func TestStringSetNX(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "lock", 30*time.Second)

	ok, err := s.SetNX(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, srv.TTL(s.Name()))

	ok, err = s.SetNX(ctx, "owner-2")
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", v)

	unmanaged := NewString(client, "lock2", 0)
	ok, err = unmanaged.SetNX(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStringGetSetSwap(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "swap", time.Minute)

	_, found, err := s.GetSet(ctx, "first")
	require.NoError(t, err)
	assert.False(t, found)

	srv.FastForward(20 * time.Second)
	old, found, err := s.GetSet(ctx, "second")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "first", old)
	assert.Equal(t, time.Minute, srv.TTL(s.Name()))
}

func TestStringIncrRefreshesOnlyOnFirstWrite(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "n", time.Minute)

	n, err := s.Incr(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, srv.TTL(s.Name()))

	srv.FastForward(30 * time.Second)
	n, err = s.Incr(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 30*time.Second, srv.TTL(s.Name()))
}

func TestStringDecrRefreshesOnlyOnFirstWrite(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "d", time.Minute)

	n, err := s.Decr(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), n)
	assert.Equal(t, time.Minute, srv.TTL(s.Name()))

	srv.FastForward(15 * time.Second)
	n, err = s.Decr(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), n)
	assert.Equal(t, 45*time.Second, srv.TTL(s.Name()))
}

func TestStringIncrOnNonInteger(t *testing.T) {
	client, _, ctx := newTestClient(t)
	s := NewString(client, "text", 0)
	_, err := s.Set(ctx, "abc")
	require.NoError(t, err)

	_, err = s.Incr(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incrby XRedis:Str:text")
}

func TestStringMSetAndMGet(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "anchor", time.Minute)

	ok, err := s.MSet(ctx, map[string]interface{}{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.True(t, ok)

	for _, key := range []string{"XRedis:Str:a", "XRedis:Str:b"} {
		assert.True(t, srv.Exists(key))
		assert.Equal(t, time.Minute, srv.TTL(key))
	}

	vals, err := s.MGet(ctx, "a", "b", "missing")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"1", "2", nil}, vals)

	vals, err = s.MGet(ctx)
	require.NoError(t, err)
	assert.Empty(t, vals)

	ok, err = s.MSet(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStringMSetNX(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewString(client, "anchor", time.Minute)

	ok, err := s.MSetNX(ctx, map[string]interface{}{"x": "1", "y": "2"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, srv.TTL("XRedis:Str:x"))

	ok, err = s.MSetNX(ctx, map[string]interface{}{"y": "3", "z": "4"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, srv.Exists("XRedis:Str:z"))

	y, err := srv.Get("XRedis:Str:y")
	require.NoError(t, err)
	assert.Equal(t, "2", y)
}
