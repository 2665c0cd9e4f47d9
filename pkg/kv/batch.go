package kv

import (
	"context"
	"net"

	"github.com/redis/go-redis/v9"
)

// batchHook turns the queue client into a recorder: commands are appended to
// the open batch under the client mutex and never reach the network.
type batchHook struct {
	c *Client
}

var _ redis.Hook = batchHook{}

func newQueueClient(c *Client) *redis.Client {
	q := redis.NewClient(&redis.Options{})
	q.AddHook(batchHook{c: c})
	return q
}

func (h batchHook) DialHook(redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, ErrNoBatch
	}
}

func (h batchHook) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		return h.c.enqueue(cmd)
	}
}

func (h batchHook) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		err := h.c.enqueue(unwrapMultiExec(cmds)...)
		if err != nil {
			for _, cmd := range cmds {
				cmd.SetErr(err)
			}
		}
		return err
	}
}

// unwrapMultiExec drops the MULTI/EXEC pair a transactional pipeline adds,
// since the batch is already sent as one transaction.
func unwrapMultiExec(cmds []redis.Cmder) []redis.Cmder {
	if n := len(cmds); n >= 2 && cmds[0].Name() == "multi" && cmds[n-1].Name() == "exec" {
		return cmds[1 : n-1]
	}
	return cmds
}

func (c *Client) enqueue(cmds ...redis.Cmder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.batchOpen {
		return ErrNoBatch
	}
	c.batch = append(c.batch, cmds...)
	return nil
}
