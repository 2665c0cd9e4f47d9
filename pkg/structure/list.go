package structure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

const tagList = "List"

// Insert positions accepted by List.Insert.
const (
	Before = "before"
	After  = "after"
)

// List is an ordered sequence; index 0 is the head.
type List struct {
	*Base
}

// NewList builds an unpooled List handle.
func NewList(client *kv.Client, name string, ttl time.Duration, opts ...Option) *List {
	return newList(client, newEnv(opts), name, ttl)
}

func newList(client *kv.Client, e *env, name string, ttl time.Duration) *List {
	return &List{Base: newBase(client, e, KindList, tagList, name, ttl)}
}

// GetByID returns the element at index; negative indexes count from the tail.
func (l *List) GetByID(ctx context.Context, index int64) (string, bool, error) {
	v, err := l.cmd(kv.RoleReplica).LIndex(ctx, l.key, index).Result()
	return stringResult(v, l.fail("lindex", err))
}

// GetByRange returns elements in [start, end], both inclusive.
func (l *List) GetByRange(ctx context.Context, start, end int64) ([]string, error) {
	vals, err := l.cmd(kv.RoleReplica).LRange(ctx, l.key, start, end).Result()
	return vals, l.fail("lrange", err)
}

// GetAll returns the whole list.
func (l *List) GetAll(ctx context.Context) ([]string, error) {
	return l.GetByRange(ctx, 0, -1)
}

// Count returns the length, 0 when missing.
func (l *List) Count(ctx context.Context) (int64, error) {
	n, err := l.cmd(kv.RoleReplica).LLen(ctx, l.key).Result()
	return n, l.fail("llen", err)
}

// LPush prepends values, creating the list if needed, and refreshes.
func (l *List) LPush(ctx context.Context, values ...interface{}) (int64, error) {
	n, err := l.cmd(kv.RolePrimary).LPush(ctx, l.key, values...).Result()
	if err != nil {
		return 0, l.fail("lpush", err)
	}
	return n, l.refreshAfter(ctx, n > 0)
}

// RPush appends values, creating the list if needed, and refreshes.
func (l *List) RPush(ctx context.Context, values ...interface{}) (int64, error) {
	n, err := l.cmd(kv.RolePrimary).RPush(ctx, l.key, values...).Result()
	if err != nil {
		return 0, l.fail("rpush", err)
	}
	return n, l.refreshAfter(ctx, n > 0)
}

// LPushX prepends only to an existing list. It never refreshes.
func (l *List) LPushX(ctx context.Context, values ...interface{}) (int64, error) {
	n, err := l.cmd(kv.RolePrimary).LPushX(ctx, l.key, values...).Result()
	return n, l.fail("lpushx", err)
}

// RPushX appends only to an existing list. It never refreshes.
func (l *List) RPushX(ctx context.Context, values ...interface{}) (int64, error) {
	n, err := l.cmd(kv.RolePrimary).RPushX(ctx, l.key, values...).Result()
	return n, l.fail("rpushx", err)
}

// LPop removes and returns the head.
func (l *List) LPop(ctx context.Context) (string, bool, error) {
	v, err := l.cmd(kv.RolePrimary).LPop(ctx, l.key).Result()
	return stringResult(v, l.fail("lpop", err))
}

// RPop removes and returns the tail.
func (l *List) RPop(ctx context.Context) (string, bool, error) {
	v, err := l.cmd(kv.RolePrimary).RPop(ctx, l.key).Result()
	return stringResult(v, l.fail("rpop", err))
}

// Insert places value before or after the first occurrence of pivot and
// returns the new length, or -1 when pivot is not in the list.
func (l *List) Insert(ctx context.Context, value interface{}, position string, pivot interface{}) (int64, error) {
	var op string
	switch strings.ToLower(position) {
	case Before:
		op = "BEFORE"
	case After:
		op = "AFTER"
	default:
		return 0, fmt.Errorf("%w: insert position %q, want %q or %q", ErrInvalidArgument, position, Before, After)
	}
	n, err := l.cmd(kv.RolePrimary).LInsert(ctx, l.key, op, pivot, value).Result()
	return n, l.fail("linsert", err)
}

// RemoveAll removes every occurrence of value.
func (l *List) RemoveAll(ctx context.Context, value interface{}) (int64, error) {
	return l.remove(ctx, 0, value)
}

// RemoveFromLeft removes up to count occurrences of value scanning from the head.
func (l *List) RemoveFromLeft(ctx context.Context, value interface{}, count int64) (int64, error) {
	return l.remove(ctx, count, value)
}

// RemoveFromRight removes up to count occurrences of value scanning from the tail.
func (l *List) RemoveFromRight(ctx context.Context, value interface{}, count int64) (int64, error) {
	return l.remove(ctx, -count, value)
}

func (l *List) remove(ctx context.Context, count int64, value interface{}) (int64, error) {
	n, err := l.cmd(kv.RolePrimary).LRem(ctx, l.key, count, value).Result()
	return n, l.fail("lrem", err)
}

// SetByIndex overwrites the element at index. It reports false when the list
// is missing or the index is out of range.
func (l *List) SetByIndex(ctx context.Context, index int64, value interface{}) (bool, error) {
	err := l.cmd(kv.RolePrimary).LSet(ctx, l.key, index, value).Err()
	if err == nil {
		return true, nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "out of range") || strings.Contains(msg, "no such key") {
		return false, nil
	}
	return false, l.fail("lset", err)
}

// Trim keeps only the elements in [start, end].
func (l *List) Trim(ctx context.Context, start, end int64) error {
	return l.fail("ltrim", l.cmd(kv.RolePrimary).LTrim(ctx, l.key, start, end).Err())
}

// RPopLPushTo moves this list's tail to the head of other and returns it.
func (l *List) RPopLPushTo(ctx context.Context, other *List) (string, bool, error) {
	v, err := l.cmd(kv.RolePrimary).RPopLPush(ctx, l.key, other.key).Result()
	return stringResult(v, l.fail("rpoplpush", err))
}
