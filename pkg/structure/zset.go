package structure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

const tagSortedSet = "ZSet"

// Order selects ascending or descending score order.
type Order int

const (
	Asc Order = iota
	Desc
)

// Aggregate is the score combination rule for Union.
type Aggregate string

const (
	AggregateSum Aggregate = "SUM"
	AggregateMin Aggregate = "MIN"
	AggregateMax Aggregate = "MAX"
)

// RangeOptions controls RangeByScore. Count <= 0 returns every match and
// ignores Offset.
type RangeOptions struct {
	Order      Order
	Count      int64
	Offset     int64
	WithScores bool
}

// SortedSet is a score-ordered collection of unique members.
type SortedSet struct {
	*Base
}

// NewSortedSet builds an unpooled SortedSet handle.
func NewSortedSet(client *kv.Client, name string, ttl time.Duration, opts ...Option) *SortedSet {
	return newSortedSet(client, newEnv(opts), name, ttl)
}

func newSortedSet(client *kv.Client, e *env, name string, ttl time.Duration) *SortedSet {
	return &SortedSet{Base: newBase(client, e, KindSortedSet, tagSortedSet, name, ttl)}
}

func (z *SortedSet) keyFor(name string) string {
	return z.env.namespace + ":" + tagSortedSet + ":" + name
}

// Add upserts one member and refreshes when it was new.
func (z *SortedSet) Add(ctx context.Context, member string, score float64) (int64, error) {
	return z.add(ctx, redis.Z{Member: member, Score: score})
}

// MAdd upserts several members and refreshes when any of them was new.
func (z *SortedSet) MAdd(ctx context.Context, members map[string]float64) (int64, error) {
	zs := make([]redis.Z, 0, len(members))
	for m, score := range members {
		zs = append(zs, redis.Z{Member: m, Score: score})
	}
	return z.add(ctx, zs...)
}

func (z *SortedSet) add(ctx context.Context, members ...redis.Z) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	n, err := z.cmd(kv.RolePrimary).ZAdd(ctx, z.key, members...).Result()
	if err != nil {
		return 0, z.fail("zadd", err)
	}
	return n, z.refreshAfter(ctx, n > 0)
}

// Count returns the cardinality.
func (z *SortedSet) Count(ctx context.Context) (int64, error) {
	n, err := z.cmd(kv.RoleReplica).ZCard(ctx, z.key).Result()
	return n, z.fail("zcard", err)
}

// ZCount counts members with scores in [min, max]. Bounds use store syntax,
// so "(1" is exclusive and "-inf"/"+inf" are open.
func (z *SortedSet) ZCount(ctx context.Context, min, max string) (int64, error) {
	n, err := z.cmd(kv.RoleReplica).ZCount(ctx, z.key, min, max).Result()
	return n, z.fail("zcount", err)
}

// Incr adds delta to member's score, refreshing when the new score equals delta.
func (z *SortedSet) Incr(ctx context.Context, member string, delta float64) (float64, error) {
	score, err := z.cmd(kv.RolePrimary).ZIncrBy(ctx, z.key, delta, member).Result()
	if err != nil {
		return 0, z.fail("zincrby", err)
	}
	return score, z.refreshAfter(ctx, score == delta)
}

// Range returns members by rank in [start, end] with their scores.
func (z *SortedSet) Range(ctx context.Context, start, end int64, order Order) ([]redis.Z, error) {
	c := z.cmd(kv.RoleReplica)
	var (
		out []redis.Z
		err error
	)
	if order == Desc {
		out, err = c.ZRevRangeWithScores(ctx, z.key, start, end).Result()
	} else {
		out, err = c.ZRangeWithScores(ctx, z.key, start, end).Result()
	}
	return out, z.fail("zrange", err)
}

// RangeByScore returns members with scores in [min, max]. min and max are
// always given low-to-high, whatever the order. Without WithScores the
// returned scores are zero.
func (z *SortedSet) RangeByScore(ctx context.Context, min, max string, opts RangeOptions) ([]redis.Z, error) {
	by := &redis.ZRangeBy{Min: min, Max: max}
	if opts.Count > 0 {
		by.Offset = opts.Offset
		by.Count = opts.Count
	}

	c := z.cmd(kv.RoleReplica)
	if opts.WithScores {
		var (
			out []redis.Z
			err error
		)
		if opts.Order == Desc {
			out, err = c.ZRevRangeByScoreWithScores(ctx, z.key, by).Result()
		} else {
			out, err = c.ZRangeByScoreWithScores(ctx, z.key, by).Result()
		}
		return out, z.fail("zrangebyscore", err)
	}

	var (
		members []string
		err     error
	)
	if opts.Order == Desc {
		members, err = c.ZRevRangeByScore(ctx, z.key, by).Result()
	} else {
		members, err = c.ZRangeByScore(ctx, z.key, by).Result()
	}
	if err != nil {
		return nil, z.fail("zrangebyscore", err)
	}
	return membersOnly(members), nil
}

func membersOnly(members []string) []redis.Z {
	out := make([]redis.Z, len(members))
	for i, m := range members {
		out[i] = redis.Z{Member: m}
	}
	return out
}

// Rank returns member's 0-based position in the given order.
func (z *SortedSet) Rank(ctx context.Context, member string, order Order) (int64, bool, error) {
	c := z.cmd(kv.RoleReplica)
	var cmd *redis.IntCmd
	if order == Desc {
		cmd = c.ZRevRank(ctx, z.key, member)
	} else {
		cmd = c.ZRank(ctx, z.key, member)
	}
	n, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, z.fail("zrank", err)
	}
	return n, true, nil
}

// Score returns member's score.
func (z *SortedSet) Score(ctx context.Context, member string) (float64, bool, error) {
	score, err := z.cmd(kv.RoleReplica).ZScore(ctx, z.key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, z.fail("zscore", err)
	}
	return score, true, nil
}

// Remove deletes members.
func (z *SortedSet) Remove(ctx context.Context, members ...interface{}) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	n, err := z.cmd(kv.RolePrimary).ZRem(ctx, z.key, members...).Result()
	return n, z.fail("zrem", err)
}

// RemoveByRank deletes members ranked in [start, end].
func (z *SortedSet) RemoveByRank(ctx context.Context, start, end int64) (int64, error) {
	n, err := z.cmd(kv.RolePrimary).ZRemRangeByRank(ctx, z.key, start, end).Result()
	return n, z.fail("zremrangebyrank", err)
}

// RemoveByScore deletes members with scores in [min, max].
func (z *SortedSet) RemoveByScore(ctx context.Context, min, max string) (int64, error) {
	n, err := z.cmd(kv.RolePrimary).ZRemRangeByScore(ctx, z.key, min, max).Result()
	return n, z.fail("zremrangebyscore", err)
}

// Union stores the weighted union of the named sorted sets into destination.
// All names are namespaced like this handle's. An empty aggregate means SUM.
func (z *SortedSet) Union(ctx context.Context, destination string, candidates []string, weights []float64, aggregate Aggregate) (int64, error) {
	agg := Aggregate(strings.ToUpper(string(aggregate)))
	switch agg {
	case "":
		agg = AggregateSum
	case AggregateSum, AggregateMin, AggregateMax:
	default:
		return 0, fmt.Errorf("%w: aggregate %q", ErrInvalidArgument, aggregate)
	}
	if len(weights) > 0 && len(weights) != len(candidates) {
		return 0, fmt.Errorf("%w: %d weights for %d sets", ErrInvalidArgument, len(weights), len(candidates))
	}

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = z.keyFor(c)
	}
	n, err := z.cmd(kv.RolePrimary).ZUnionStore(ctx, z.keyFor(destination), &redis.ZStore{
		Keys:      keys,
		Weights:   weights,
		Aggregate: string(agg),
	}).Result()
	return n, z.fail("zunionstore", err)
}

// Pop removes and returns the lowest-ranked member.
func (z *SortedSet) Pop(ctx context.Context) ([]redis.Z, error) {
	return z.PopByRank(ctx, 0, 0)
}

// PopByRank removes and returns the members ranked in [start, end]. The read
// and the removal run in one transaction.
func (z *SortedSet) PopByRank(ctx context.Context, start, end int64) ([]redis.Z, error) {
	var read *redis.ZSliceCmd
	_, err := z.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		read = pipe.ZRangeWithScores(ctx, z.key, start, end)
		pipe.ZRemRangeByRank(ctx, z.key, start, end)
		return nil
	})
	if err != nil {
		return nil, z.fail("pop by rank", err)
	}
	return read.Val(), nil
}

// PopByScore removes and returns the members scored in [0, max] in one
// transaction.
func (z *SortedSet) PopByScore(ctx context.Context, max string) ([]redis.Z, error) {
	var read *redis.ZSliceCmd
	_, err := z.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		read = pipe.ZRangeByScoreWithScores(ctx, z.key, &redis.ZRangeBy{Min: "0", Max: max})
		pipe.ZRemRangeByScore(ctx, z.key, "0", max)
		return nil
	})
	if err != nil {
		return nil, z.fail("pop by score", err)
	}
	return read.Val(), nil
}
