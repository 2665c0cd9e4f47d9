package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPushAndRead(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	l := NewList(client, "queue", time.Minute)

	n, err := l.RPush(ctx, "b", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, time.Minute, srv.TTL(l.Name()))

	n, err = l.LPush(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	all, err := l.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)

	v, found, err := l.GetByID(ctx, -1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "c", v)

	_, found, err = l.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.False(t, found)

	part, err := l.GetByRange(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, part)

	count, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestListPushXOnMissing(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	l := NewList(client, "absent", time.Minute)

	n, err := l.LPushX(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = l.RPushX(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.False(t, srv.Exists(l.Name()))

	_, err = l.RPush(ctx, "x")
	require.NoError(t, err)
	n, err = l.RPushX(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestListPop(t *testing.T) {
	client, _, ctx := newTestClient(t)
	l := NewList(client, "pops", 0)

	_, found, err := l.LPop(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = l.RPush(ctx, "a", "b", "c")
	require.NoError(t, err)

	v, _, err := l.LPop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, _, err = l.RPop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", v)
}

func TestListInsert(t *testing.T) {
	client, _, ctx := newTestClient(t)
	l := NewList(client, "ins", 0)
	_, err := l.RPush(ctx, "a", "c")
	require.NoError(t, err)

	n, err := l.Insert(ctx, "b", Before, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = l.Insert(ctx, "d", "AFTER", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = l.Insert(ctx, "z", After, "nope")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)

	_, err = l.Insert(ctx, "z", "middle", "a")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	all, err := l.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, all)
}

func TestListRemove(t *testing.T) {
	client, _, ctx := newTestClient(t)
	l := NewList(client, "rem", 0)
	_, err := l.RPush(ctx, "a", "b", "a", "c", "a")
	require.NoError(t, err)

	n, err := l.RemoveFromRight(ctx, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	all, err := l.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a", "c"}, all)

	n, err = l.RemoveFromLeft(ctx, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	all, err = l.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, all)

	_, err = l.RPush(ctx, "a")
	require.NoError(t, err)
	n, err = l.RemoveAll(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestListSetByIndex(t *testing.T) {
	client, _, ctx := newTestClient(t)
	l := NewList(client, "setidx", 0)

	ok, err := l.SetByIndex(ctx, 0, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.RPush(ctx, "a", "b")
	require.NoError(t, err)

	ok, err = l.SetByIndex(ctx, 1, "B")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.SetByIndex(ctx, 5, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := l.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "B"}, all)
}

func TestListTrimAndRotate(t *testing.T) {
	client, _, ctx := newTestClient(t)
	src := NewList(client, "src", 0)
	dst := NewList(client, "dst", 0)
	_, err := src.RPush(ctx, "a", "b", "c", "d")
	require.NoError(t, err)

	require.NoError(t, src.Trim(ctx, 0, 2))
	all, err := src.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)

	v, found, err := src.RPopLPushTo(ctx, dst)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "c", v)

	moved, err := dst.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, moved)

	empty := NewList(client, "empty", 0)
	_, found, err = empty.RPopLPushTo(ctx, dst)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListPushXAndPopKeepTTL(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	l := NewList(client, "aging", time.Minute)

	_, err := l.RPush(ctx, "a", "b", "c")
	require.NoError(t, err)
	srv.FastForward(30 * time.Second)

	_, err = l.RPushX(ctx, "d")
	require.NoError(t, err)
	_, err = l.LPushX(ctx, "z")
	require.NoError(t, err)
	_, _, err = l.LPop(ctx)
	require.NoError(t, err)
	_, _, err = l.RPop(ctx)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, srv.TTL(l.Name()))
}
