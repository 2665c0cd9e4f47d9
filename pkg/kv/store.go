package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrBackendUnavailable is returned when the backend storage is unavailable
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrBatchOpen is returned by Multi when a batch is already queued
var ErrBatchOpen = errors.New("kv: batch already open")

// ErrNoBatch is returned by Exec and Discard when no batch is open, and by
// commands queued after the batch they were obtained for has closed
var ErrNoBatch = errors.New("kv: no open batch")

// Role selects which connection serves a command.
type Role int

const (
	// RolePrimary serves writes and reads that must not be stale.
	RolePrimary Role = iota
	// RoleReplica serves reads that tolerate replication lag.
	RoleReplica
)

func (r Role) String() string {
	if r == RoleReplica {
		return "replica"
	}
	return "primary"
}

// Client is the single shared store connection used by every structure.
// Without a configured replica both roles route to the primary.
type Client struct {
	primary redis.UniversalClient
	replica redis.UniversalClient
	closers []func() error

	mu        sync.Mutex
	batchOpen bool
	batch     []redis.Cmder
	queue     *redis.Client

	logger *zap.SugaredLogger
}

// NewClient wraps already constructed go-redis clients. replica may be nil.
func NewClient(primary, replica redis.UniversalClient, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if replica == nil {
		replica = primary
	}
	c := &Client{primary: primary, replica: replica, logger: logger}
	c.queue = newQueueClient(c)
	return c
}

// OnClose registers cleanup that runs after the connections are closed.
func (c *Client) OnClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Cmd returns the command target for role. While a batch is open all
// commands are queued in it regardless of role. A command queued through the
// returned target after the batch was executed or discarded fails with
// ErrNoBatch.
func (c *Client) Cmd(role Role) redis.Cmdable {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.batchOpen {
		return c.queue
	}
	if role == RoleReplica {
		return c.replica
	}
	return c.primary
}

// InBatch reports whether commands are currently being queued.
func (c *Client) InBatch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batchOpen
}

// Multi starts queueing commands into a MULTI/EXEC batch.
func (c *Client) Multi() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.batchOpen {
		return ErrBatchOpen
	}
	c.batchOpen = true
	c.batch = nil
	return nil
}

// Exec commits the open batch. The returned commands are in issuance order.
func (c *Client) Exec(ctx context.Context) ([]redis.Cmder, error) {
	c.mu.Lock()
	open, queued := c.batchOpen, c.batch
	c.batchOpen, c.batch = false, nil
	c.mu.Unlock()

	if !open {
		return nil, ErrNoBatch
	}

	pipe := c.primary.TxPipeline()
	for _, cmd := range queued {
		_ = pipe.Process(ctx, cmd)
	}
	cmds, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warnw("Batch exec failed", "commands", len(cmds), "error", err)
		return cmds, wrapConnectionError(err)
	}
	return cmds, nil
}

// Discard drops the open batch without sending it.
func (c *Client) Discard() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.batchOpen {
		return ErrNoBatch
	}
	c.batchOpen, c.batch = false, nil
	return nil
}

// TxPipelined runs fn inside its own MULTI/EXEC on the primary,
// independent of any batch opened with Multi.
func (c *Client) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	cmds, err := c.primary.TxPipelined(ctx, fn)
	if err != nil && !errors.Is(err, redis.Nil) {
		return cmds, wrapConnectionError(err)
	}
	return cmds, nil
}

// Ping checks if the primary is reachable
func (c *Client) Ping(ctx context.Context) error {
	return wrapConnectionError(c.primary.Ping(ctx).Err())
}

// Close closes both connections and any backend resources.
func (c *Client) Close() error {
	var errs []error
	if err := c.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.queue.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.replica != c.primary {
		if err := c.replica.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close kv client: %w", errors.Join(errs...))
	}
	return nil
}
