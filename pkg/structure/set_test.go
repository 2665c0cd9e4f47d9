package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAddAndRead(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewSet(client, "tags", time.Minute)

	n, err := s.Add(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.Minute, srv.TTL(s.Name()))

	srv.FastForward(20 * time.Second)
	n, err = s.Add(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, 40*time.Second, srv.TTL(s.Name()))

	members, err := s.Members(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, members)

	ok, err := s.IsMember(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	v, found, err := s.RandMember(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, members, v)

	n, err = s.Remove(ctx, "a", "zz")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSetAddWithoutRefresh(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewSet(client, "seen", time.Minute)

	_, err := s.AddWithoutRefresh(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, srv.TTL(s.Name()))

	srv.FastForward(20 * time.Second)
	n, err := s.AddWithoutRefresh(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 40*time.Second, srv.TTL(s.Name()))
}

func TestSetPop(t *testing.T) {
	client, _, ctx := newTestClient(t)
	s := NewSet(client, "bag", 0)

	_, found, err := s.Pop(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.Add(ctx, "only")
	require.NoError(t, err)
	v, found, err := s.Pop(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "only", v)
}

func TestSetAlgebra(t *testing.T) {
	client, _, ctx := newTestClient(t)
	a := NewSet(client, "a", 0)
	b := NewSet(client, "b", 0)
	_, err := a.Add(ctx, "1", "2", "3")
	require.NoError(t, err)
	_, err = b.Add(ctx, "2", "3", "4")
	require.NoError(t, err)

	diff, err := a.Diff(ctx, b)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1"}, diff)

	inter, err := a.Inter(ctx, b)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, inter)

	union, err := a.Union(ctx, b)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "3", "4"}, union)
}

func TestSetStoreInheritsTTL(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	a := NewSet(client, "a", time.Minute)
	b := NewSet(client, "b", 0)
	_, err := a.Add(ctx, "1", "2", "3")
	require.NoError(t, err)
	_, err = b.Add(ctx, "2")
	require.NoError(t, err)

	d, err := a.DiffStore(ctx, b, "a-minus-b")
	require.NoError(t, err)
	assert.Equal(t, "XRedis:Set:a-minus-b", d.Name())
	assert.Equal(t, time.Minute, d.ConfiguredTTL())
	assert.Equal(t, time.Minute, srv.TTL(d.Name()))

	members, err := d.Members(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "3"}, members)

	i, err := a.InterStore(ctx, b, "both")
	require.NoError(t, err)
	members, err = i.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, members)

	u, err := b.UnionStore(ctx, a, "either")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), u.ConfiguredTTL())
	count, err := u.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, time.Duration(0), srv.TTL(u.Name()))
}

func TestSetMoveTo(t *testing.T) {
	client, _, ctx := newTestClient(t)
	from := NewSet(client, "from", 0)
	to := NewSet(client, "to", 0)
	_, err := from.Add(ctx, "x")
	require.NoError(t, err)

	ok, err := from.MoveTo(ctx, to, "x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = from.MoveTo(ctx, to, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = to.IsMember(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetRemoveKeepsTTL(t *testing.T) {
	client, srv, ctx := newTestClient(t)
	s := NewSet(client, "aging", time.Minute)

	_, err := s.Add(ctx, "a", "b", "c")
	require.NoError(t, err)
	srv.FastForward(30 * time.Second)

	n, err := s.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, _, err = s.Pop(ctx)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, srv.TTL(s.Name()))
}
