package structure

import (
	"context"
	"time"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

const tagSet = "Set"

// Set is an unordered collection of unique members.
type Set struct {
	*Base
}

// NewSet builds an unpooled Set handle.
func NewSet(client *kv.Client, name string, ttl time.Duration, opts ...Option) *Set {
	return newSet(client, newEnv(opts), name, ttl)
}

func newSet(client *kv.Client, e *env, name string, ttl time.Duration) *Set {
	return &Set{Base: newBase(client, e, KindSet, tagSet, name, ttl)}
}

// Add inserts members and refreshes when at least one of them was new. A
// single slice argument is expanded into its elements.
func (s *Set) Add(ctx context.Context, members ...interface{}) (int64, error) {
	n, err := s.add(ctx, members)
	if err != nil {
		return 0, err
	}
	return n, s.refreshAfter(ctx, n > 0)
}

// AddWithoutRefresh inserts members but only seeds a ttl on a key that has
// none; an expiration already running is left alone.
func (s *Set) AddWithoutRefresh(ctx context.Context, members ...interface{}) (int64, error) {
	n, err := s.add(ctx, members)
	if err != nil || n == 0 || s.ttl < 0 {
		return n, err
	}
	current, err := s.TTL(ctx)
	if err != nil {
		return n, err
	}
	return n, s.refreshAfter(ctx, current == NoExpiration)
}

func (s *Set) add(ctx context.Context, members []interface{}) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	n, err := s.cmd(kv.RolePrimary).SAdd(ctx, s.key, members...).Result()
	return n, s.fail("sadd", err)
}

// Remove deletes members and returns how many were present.
func (s *Set) Remove(ctx context.Context, members ...interface{}) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	n, err := s.cmd(kv.RolePrimary).SRem(ctx, s.key, members...).Result()
	return n, s.fail("srem", err)
}

// Pop removes and returns a random member.
func (s *Set) Pop(ctx context.Context) (string, bool, error) {
	v, err := s.cmd(kv.RolePrimary).SPop(ctx, s.key).Result()
	return stringResult(v, s.fail("spop", err))
}

// RandMember returns a random member without removing it.
func (s *Set) RandMember(ctx context.Context) (string, bool, error) {
	v, err := s.cmd(kv.RoleReplica).SRandMember(ctx, s.key).Result()
	return stringResult(v, s.fail("srandmember", err))
}

// IsMember reports whether member is in the set.
func (s *Set) IsMember(ctx context.Context, member interface{}) (bool, error) {
	ok, err := s.cmd(kv.RoleReplica).SIsMember(ctx, s.key, member).Result()
	return ok, s.fail("sismember", err)
}

// Members returns every member.
func (s *Set) Members(ctx context.Context) ([]string, error) {
	m, err := s.cmd(kv.RoleReplica).SMembers(ctx, s.key).Result()
	return m, s.fail("smembers", err)
}

// Count returns the cardinality.
func (s *Set) Count(ctx context.Context) (int64, error) {
	n, err := s.cmd(kv.RoleReplica).SCard(ctx, s.key).Result()
	return n, s.fail("scard", err)
}

// Diff returns members of s that are not in other.
func (s *Set) Diff(ctx context.Context, other *Set) ([]string, error) {
	m, err := s.cmd(kv.RoleReplica).SDiff(ctx, s.key, other.key).Result()
	return m, s.fail("sdiff", err)
}

// Inter returns members present in both sets.
func (s *Set) Inter(ctx context.Context, other *Set) ([]string, error) {
	m, err := s.cmd(kv.RoleReplica).SInter(ctx, s.key, other.key).Result()
	return m, s.fail("sinter", err)
}

// Union returns members present in either set.
func (s *Set) Union(ctx context.Context, other *Set) ([]string, error) {
	m, err := s.cmd(kv.RoleReplica).SUnion(ctx, s.key, other.key).Result()
	return m, s.fail("sunion", err)
}

// DiffStore stores Diff into a new Set named newName, which inherits this
// set's ttl and is refreshed when the result is not empty.
func (s *Set) DiffStore(ctx context.Context, other *Set, newName string) (*Set, error) {
	return s.store(ctx, "sdiffstore", newName, func(dst *Set) (int64, error) {
		return s.cmd(kv.RolePrimary).SDiffStore(ctx, dst.key, s.key, other.key).Result()
	})
}

// InterStore stores Inter into a new Set named newName.
func (s *Set) InterStore(ctx context.Context, other *Set, newName string) (*Set, error) {
	return s.store(ctx, "sinterstore", newName, func(dst *Set) (int64, error) {
		return s.cmd(kv.RolePrimary).SInterStore(ctx, dst.key, s.key, other.key).Result()
	})
}

// UnionStore stores Union into a new Set named newName.
func (s *Set) UnionStore(ctx context.Context, other *Set, newName string) (*Set, error) {
	return s.store(ctx, "sunionstore", newName, func(dst *Set) (int64, error) {
		return s.cmd(kv.RolePrimary).SUnionStore(ctx, dst.key, s.key, other.key).Result()
	})
}

func (s *Set) store(ctx context.Context, op, newName string, run func(dst *Set) (int64, error)) (*Set, error) {
	dst := newSet(s.client, s.env, newName, s.ttl)
	n, err := run(dst)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return dst, dst.refreshAfter(ctx, n > 0)
}

// MoveTo moves member from s into other. It reports false when member was
// not in s.
func (s *Set) MoveTo(ctx context.Context, other *Set, member interface{}) (bool, error) {
	ok, err := s.cmd(kv.RolePrimary).SMove(ctx, s.key, other.key, member).Result()
	return ok, s.fail("smove", err)
}
