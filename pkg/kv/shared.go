package kv

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Shared hands out one Client per process. The first Acquire dials; callers
// racing on that first dial wait for it and get the same Client. A failed
// dial is not remembered, so a later Acquire tries again.
type Shared struct {
	cfg   Config
	group singleflight.Group

	mu     sync.RWMutex
	client *Client
}

// NewShared prepares lazy construction from cfg. Nothing is dialed yet.
func NewShared(cfg Config) *Shared {
	return &Shared{cfg: cfg}
}

// NewSharedFromClient wraps a client that is already connected.
func NewSharedFromClient(c *Client) *Shared {
	return &Shared{client: c}
}

// Acquire returns the process client, creating it on first use.
func (s *Shared) Acquire(ctx context.Context) (*Client, error) {
	s.mu.RLock()
	c := s.client
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err, _ := s.group.Do("client", func() (interface{}, error) {
		s.mu.RLock()
		existing := s.client
		s.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		created, err := NewClientFromConfig(ctx, s.cfg)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.client = created
		s.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// Acquired reports whether the client has been created.
func (s *Shared) Acquired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// Close closes the client if one was created.
func (s *Shared) Close() error {
	s.mu.Lock()
	c := s.client
	s.client = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}
