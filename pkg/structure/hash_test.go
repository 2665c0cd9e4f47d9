package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFieldOperations(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	h := NewHash(client, "user:1", time.Minute)

	n, err := h.Set(ctx, "name", "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, srv.TTL(h.Name()))

	n, err = h.Set(ctx, "name", "grace")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	v, found, err := h.Get(ctx, "name")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "grace", v)

	_, found, err = h.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := h.Contains(ctx, "name")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.SetNX(ctx, "name", "other")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.SetNX(ctx, "lang", "go")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	keys, err := h.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"name", "lang"}, keys)

	vals, err := h.Vals(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"grace", "go"}, vals)
}

func TestHashMSetAndGetAll(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	h := NewHash(client, "profile", time.Minute)

	ok, err := h.MSet(ctx, map[string]interface{}{"a": "1", "b": 2})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, srv.TTL(h.Name()))

	all, err := h.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)

	ok, err = h.MSet(ctx, map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashMGetDropsNonScalarFields(t *testing.T) {
	client, _, ctx := newTestClient(t)
	h := NewHash(client, "mixed", 0)

	_, err := h.MSet(ctx, map[string]interface{}{"a": "x", "1": "one", "2.5": "float"})
	require.NoError(t, err)

	got, err := h.MGet(ctx, "a", 1, 2.5, []string{"a"}, "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "x", "1": "one"}, got)

	got, err = h.MGet(ctx, 2.5, struct{}{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHashDel(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	h := NewHash(client, "dels", time.Minute)
	_, err := h.MSet(ctx, map[string]interface{}{"a": "1", "b": "2", "c": "3"})
	require.NoError(t, err)

	srv.FastForward(20 * time.Second)

	n, err := h.Del(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = h.MDel(ctx, "b", "c", "zz")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = h.MDel(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.False(t, srv.Exists(h.Name()))
}

func TestHashIncrRefreshesOnFirstWrite(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	h := NewHash(client, "stats", time.Minute)

	_, err := h.Set(ctx, "seed", "x")
	require.NoError(t, err)
	srv.FastForward(30 * time.Second)

	n, err := h.IncrBy(ctx, "views", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, time.Minute, srv.TTL(h.Name()))

	srv.FastForward(10 * time.Second)
	n, err = h.IncrBy(ctx, "views", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, 50*time.Second, srv.TTL(h.Name()))

	f, err := h.IncrByFloat(ctx, "ratio", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)
	assert.Equal(t, time.Minute, srv.TTL(h.Name()))
}

func TestHashDelKeepsTTL(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	h := NewHash(client, "aging", time.Minute)

	_, err := h.MSet(ctx, map[string]interface{}{"a": "1", "b": "2", "c": "3"})
	require.NoError(t, err)
	srv.FastForward(30 * time.Second)

	_, err = h.Del(ctx, "a")
	require.NoError(t, err)
	_, err = h.MDel(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, srv.TTL(h.Name()))
}
