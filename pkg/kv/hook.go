package kv

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CommandRecorder receives one measurement per command sent to the store.
// Pipelined commands are recorded individually with the pipeline's latency.
type CommandRecorder interface {
	RecordCommand(ctx context.Context, role string, command string, duration time.Duration, err error)
}

type commandHook struct {
	role     Role
	logger   *zap.SugaredLogger
	recorder CommandRecorder
}

var _ redis.Hook = (*commandHook)(nil)

func newCommandHook(role Role, logger *zap.SugaredLogger, recorder CommandRecorder) *commandHook {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &commandHook{role: role, logger: logger, recorder: recorder}
}

func (h *commandHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Warnw("Store dial failed", "role", h.role.String(), "addr", addr, "error", err)
		}
		return conn, err
	}
}

func (h *commandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, cmd, time.Since(start), err)
		return err
	}
}

func (h *commandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)
		for _, cmd := range cmds {
			h.observe(ctx, cmd, elapsed, cmd.Err())
		}
		return err
	}
}

func (h *commandHook) observe(ctx context.Context, cmd redis.Cmder, elapsed time.Duration, err error) {
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	if err != nil {
		h.logger.Debugw("Store command failed",
			"role", h.role.String(),
			"command", cmd.FullName(),
			"duration", elapsed,
			"error", err,
		)
	}
	if h.recorder != nil {
		h.recorder.RecordCommand(ctx, h.role.String(), cmd.Name(), elapsed, err)
	}
}
