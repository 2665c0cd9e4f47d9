package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RogerJin0910/xredis/pkg/kv"
	"github.com/RogerJin0910/xredis/pkg/kv/kvtest"
)

func TestMemoryBackend(t *testing.T) {
	factory := func(t *testing.T) *kv.Client {
		e, err := Start(kv.Config{})
		if err != nil {
			t.Fatalf("Failed to start embedded store: %v", err)
		}
		return e.Client
	}

	kvtest.RunConformanceTests(t, factory)
}

func TestMemoryBackendRegistered(t *testing.T) {
	ctx := context.Background()

	client, err := kv.NewClientFromConfig(ctx, kv.Config{Backend: kv.BackendMemory})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(ctx))
}

func TestCloseStopsServer(t *testing.T) {
	e, err := Start(kv.Config{})
	require.NoError(t, err)

	addr := e.Server.Addr()
	require.NoError(t, e.Client.Close())

	// Dial succeeds lazily; the first command must fail once the server is gone
	probe, err := kv.Dial("redis://"+addr, "", kv.Config{})
	require.NoError(t, err)
	defer probe.Close()

	err = probe.Ping(context.Background())
	assert.ErrorIs(t, err, kv.ErrBackendUnavailable)
}
