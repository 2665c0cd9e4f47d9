package structure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

// DefaultNamespace prefixes every key built by a pool unless WithNamespace
// says otherwise.
const DefaultNamespace = "XRedis"

var (
	// ErrUnsupportedKind is returned when a pool is asked for a kind it has
	// no constructor for.
	ErrUnsupportedKind = errors.New("unsupported structure kind")
	// ErrInvalidArgument marks caller misuse such as an unknown insert position.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind names a structure type. The values double as pool key prefixes.
type Kind string

const (
	KindString    Kind = "string"
	KindCounter   Kind = "counter"
	KindHash      Kind = "hash"
	KindList      Kind = "rlist"
	KindSet       Kind = "set"
	KindSortedSet Kind = "zset"
)

// Structure is the part every pooled handle has in common.
type Structure interface {
	Name() string
	Kind() Kind
	ConfiguredTTL() time.Duration
	Delete(ctx context.Context) (int64, error)
	Exists(ctx context.Context) (bool, error)
	TTL(ctx context.Context) (time.Duration, error)
	Refresh(ctx context.Context) (bool, error)

	base() *Base
}

// Recorder receives pool and refresh events.
type Recorder interface {
	RecordPoolHit(ctx context.Context, kind string)
	RecordPoolMiss(ctx context.Context, kind string)
	RecordRefresh(ctx context.Context, kind string)
}

type constructor func(client *kv.Client, e *env, name string, ttl time.Duration) Structure

var constructors = map[Kind]constructor{
	KindString: func(c *kv.Client, e *env, name string, ttl time.Duration) Structure {
		return newString(c, e, name, ttl)
	},
	KindCounter: func(c *kv.Client, e *env, name string, ttl time.Duration) Structure {
		return newCounter(c, e, name, ttl)
	},
	KindHash: func(c *kv.Client, e *env, name string, ttl time.Duration) Structure {
		return newHash(c, e, name, ttl)
	},
	KindList: func(c *kv.Client, e *env, name string, ttl time.Duration) Structure {
		return newList(c, e, name, ttl)
	},
	KindSet: func(c *kv.Client, e *env, name string, ttl time.Duration) Structure {
		return newSet(c, e, name, ttl)
	},
	KindSortedSet: func(c *kv.Client, e *env, name string, ttl time.Duration) Structure {
		return newSortedSet(c, e, name, ttl)
	},
}

// Option configures a Pool or a directly constructed handle.
type Option func(*env)

// WithNamespace replaces DefaultNamespace as the key prefix.
func WithNamespace(ns string) Option {
	return func(e *env) {
		if ns != "" {
			e.namespace = ns
		}
	}
}

// WithLogger sets the logger used for refresh failures and pool events.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the sink for pool and refresh events.
func WithRecorder(r Recorder) Option {
	return func(e *env) {
		e.recorder = r
	}
}

func newEnv(opts []Option) *env {
	e := &env{namespace: DefaultNamespace, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pool keeps at most one handle per (kind, name). A handle, once built, is
// returned to every later caller; the ttl of later requests is ignored.
type Pool struct {
	shared *kv.Shared
	env    *env

	mu      sync.Mutex
	handles map[string]Structure
}

// NewPool creates an empty pool drawing its connection from shared.
func NewPool(shared *kv.Shared, opts ...Option) *Pool {
	return &Pool{
		shared:  shared,
		env:     newEnv(opts),
		handles: make(map[string]Structure),
	}
}

func poolKey(kind Kind, name string) string {
	return strings.ToLower(string(kind)) + "_" + name
}

// Resolve returns the pooled handle for (kind, name), building it with ttl
// when it does not exist yet.
func (p *Pool) Resolve(ctx context.Context, kind Kind, name string, ttl time.Duration) (Structure, error) {
	build, key, err := p.lookup(kind, name)
	if err != nil {
		return nil, err
	}

	if h, ok := p.cached(ctx, key, ttl); ok {
		return h, nil
	}

	// The dial can be slow, so other names stay resolvable meanwhile.
	client, err := p.shared.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire store client: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.handles[key]; ok {
		p.hit(ctx, h, ttl)
		return h, nil
	}
	h := build(client, p.env, name, ttl)
	p.handles[key] = h
	if p.env.recorder != nil {
		p.env.recorder.RecordPoolMiss(ctx, string(h.Kind()))
	}
	p.env.logger.Debugw("Structure handle created", "kind", h.Kind(), "key", h.Name(), "ttl", h.ConfiguredTTL())
	return h, nil
}

// Peek returns the pooled handle for (kind, name) when there is one.
// Otherwise it returns a handle built with a zero ttl that is not added to
// the pool; pooled reports which of the two it is.
func (p *Pool) Peek(ctx context.Context, kind Kind, name string) (h Structure, pooled bool, err error) {
	build, key, err := p.lookup(kind, name)
	if err != nil {
		return nil, false, err
	}

	p.mu.Lock()
	h, pooled = p.handles[key]
	p.mu.Unlock()
	if pooled {
		return h, true, nil
	}

	client, err := p.shared.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire store client: %w", err)
	}
	return build(client, p.env, name, 0), false, nil
}

func (p *Pool) lookup(kind Kind, name string) (constructor, string, error) {
	build, ok := constructors[Kind(strings.ToLower(string(kind)))]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	return build, poolKey(kind, name), nil
}

func (p *Pool) cached(ctx context.Context, key string, ttl time.Duration) (Structure, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.handles[key]
	if ok {
		p.hit(ctx, h, ttl)
	}
	return h, ok
}

// hit must be called with p.mu held.
func (p *Pool) hit(ctx context.Context, h Structure, ttl time.Duration) {
	if p.env.recorder != nil {
		p.env.recorder.RecordPoolHit(ctx, string(h.Kind()))
	}
	if h.ConfiguredTTL() != ttl {
		p.env.logger.Debugw("Pooled handle keeps its original ttl",
			"key", h.Name(),
			"ttl", h.ConfiguredTTL(),
			"requested", ttl,
		)
	}
}

// Len reports how many handles the pool holds.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// String resolves a String handle.
func (p *Pool) String(ctx context.Context, name string, ttl time.Duration) (*String, error) {
	return resolveAs[*String](ctx, p, KindString, name, ttl)
}

// Counter resolves a Counter handle. A zero ttl selects DefaultCounterTTL.
func (p *Pool) Counter(ctx context.Context, name string, ttl time.Duration) (*Counter, error) {
	return resolveAs[*Counter](ctx, p, KindCounter, name, ttl)
}

// Hash resolves a Hash handle.
func (p *Pool) Hash(ctx context.Context, name string, ttl time.Duration) (*Hash, error) {
	return resolveAs[*Hash](ctx, p, KindHash, name, ttl)
}

// List resolves a List handle.
func (p *Pool) List(ctx context.Context, name string, ttl time.Duration) (*List, error) {
	return resolveAs[*List](ctx, p, KindList, name, ttl)
}

// Set resolves a Set handle.
func (p *Pool) Set(ctx context.Context, name string, ttl time.Duration) (*Set, error) {
	return resolveAs[*Set](ctx, p, KindSet, name, ttl)
}

// SortedSet resolves a SortedSet handle.
func (p *Pool) SortedSet(ctx context.Context, name string, ttl time.Duration) (*SortedSet, error) {
	return resolveAs[*SortedSet](ctx, p, KindSortedSet, name, ttl)
}

func resolveAs[T Structure](ctx context.Context, p *Pool, kind Kind, name string, ttl time.Duration) (T, error) {
	var zero T
	h, err := p.Resolve(ctx, kind, name, ttl)
	if err != nil {
		return zero, err
	}
	typed, ok := h.(T)
	if !ok {
		return zero, fmt.Errorf("pooled handle %s is %T", h.Name(), h)
	}
	return typed, nil
}
