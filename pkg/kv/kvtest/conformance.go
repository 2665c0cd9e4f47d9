// Package kvtest provides conformance tests for kv backends and a helper
// that serves tests from an in-process server.
package kvtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

// ClientFactory creates a fresh, connected Client for testing
type ClientFactory func(t *testing.T) *kv.Client

// NewMiniredis starts an in-process server for the duration of the test and
// returns a client bound to it, with the primary also serving replica reads.
func NewMiniredis(t *testing.T) (*kv.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client, err := kv.Dial("redis://"+srv.Addr(), "", kv.Config{})
	if err != nil {
		t.Fatalf("Failed to dial miniredis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

// RunConformanceTests runs all conformance tests against a backend
func RunConformanceTests(t *testing.T, factory ClientFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, client *kv.Client)
	}{
		{"Ping", testPing},
		{"RoleRouting", testRoleRouting},
		{"BatchExecOrder", testBatchExecOrder},
		{"BatchDiscard", testBatchDiscard},
		{"BatchMisuse", testBatchMisuse},
		{"BatchConcurrentQueue", testBatchConcurrentQueue},
		{"BatchLateCommand", testBatchLateCommand},
		{"TxPipelinedIsolated", testTxPipelinedIsolated},
		{"ExpireAndTTL", testExpireAndTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := factory(t)
			defer client.Close()
			tt.test(t, client)
		})
	}
}

func testPing(t *testing.T, client *kv.Client) {
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func testRoleRouting(t *testing.T, client *kv.Client) {
	ctx := context.Background()
	key := "kvtest:role"
	defer client.Cmd(kv.RolePrimary).Del(ctx, key)

	if err := client.Cmd(kv.RolePrimary).Set(ctx, key, "v", 0).Err(); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Replica may lag; poll briefly before giving up
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := client.Cmd(kv.RoleReplica).Get(ctx, key).Result()
		if err == nil {
			if got != "v" {
				t.Fatalf("Expected %q from replica, got %q", "v", got)
			}
			return
		}
		if !errors.Is(err, redis.Nil) {
			t.Fatalf("Replica Get failed: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatalf("Replica never observed %s", key)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func testBatchExecOrder(t *testing.T, client *kv.Client) {
	ctx := context.Background()
	key := "kvtest:batch"
	defer client.Cmd(kv.RolePrimary).Del(ctx, key)

	if err := client.Multi(); err != nil {
		t.Fatalf("Multi failed: %v", err)
	}
	if !client.InBatch() {
		t.Fatalf("Expected client to report an open batch")
	}

	client.Cmd(kv.RolePrimary).RPush(ctx, key, "a")
	client.Cmd(kv.RolePrimary).RPush(ctx, key, "b")
	client.Cmd(kv.RoleReplica).LLen(ctx, key)

	cmds, err := client.Exec(ctx)
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if len(cmds) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(cmds))
	}
	if n := cmds[2].(*redis.IntCmd).Val(); n != 2 {
		t.Fatalf("Expected LLEN 2 as last result, got %d", n)
	}
	if client.InBatch() {
		t.Fatalf("Expected batch to be closed after Exec")
	}
}

func testBatchDiscard(t *testing.T, client *kv.Client) {
	ctx := context.Background()
	key := "kvtest:discard"

	if err := client.Multi(); err != nil {
		t.Fatalf("Multi failed: %v", err)
	}
	client.Cmd(kv.RolePrimary).Set(ctx, key, "never", 0)
	if err := client.Discard(); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}

	n, err := client.Cmd(kv.RolePrimary).Exists(ctx, key).Result()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("Expected discarded write to have no effect")
	}
}

func testBatchMisuse(t *testing.T, client *kv.Client) {
	ctx := context.Background()

	if _, err := client.Exec(ctx); !errors.Is(err, kv.ErrNoBatch) {
		t.Fatalf("Expected ErrNoBatch from Exec, got %v", err)
	}
	if err := client.Discard(); !errors.Is(err, kv.ErrNoBatch) {
		t.Fatalf("Expected ErrNoBatch from Discard, got %v", err)
	}
	if err := client.Multi(); err != nil {
		t.Fatalf("Multi failed: %v", err)
	}
	defer client.Discard()
	if err := client.Multi(); !errors.Is(err, kv.ErrBatchOpen) {
		t.Fatalf("Expected ErrBatchOpen, got %v", err)
	}
}

func testBatchConcurrentQueue(t *testing.T, client *kv.Client) {
	ctx := context.Background()
	const workers, perWorker = 8, 50
	key := "kvtest:concurrent"
	defer client.Cmd(kv.RolePrimary).Del(ctx, key)

	if err := client.Multi(); err != nil {
		t.Fatalf("Multi failed: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				client.Cmd(kv.RolePrimary).SAdd(ctx, key, fmt.Sprintf("%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	cmds, err := client.Exec(ctx)
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if len(cmds) != workers*perWorker {
		t.Fatalf("Expected %d results, got %d", workers*perWorker, len(cmds))
	}
	n, err := client.Cmd(kv.RolePrimary).SCard(ctx, key).Result()
	if err != nil {
		t.Fatalf("SCard failed: %v", err)
	}
	if n != workers*perWorker {
		t.Fatalf("Expected %d members, got %d", workers*perWorker, n)
	}
}

func testBatchLateCommand(t *testing.T, client *kv.Client) {
	ctx := context.Background()
	key := "kvtest:late"
	defer client.Cmd(kv.RolePrimary).Del(ctx, key)

	if err := client.Multi(); err != nil {
		t.Fatalf("Multi failed: %v", err)
	}
	target := client.Cmd(kv.RolePrimary)
	if _, err := client.Exec(ctx); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	if err := target.Set(ctx, key, "late", 0).Err(); !errors.Is(err, kv.ErrNoBatch) {
		t.Fatalf("Expected ErrNoBatch for a command after Exec, got %v", err)
	}
	n, err := client.Cmd(kv.RolePrimary).Exists(ctx, key).Result()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("Expected the late write to have no effect")
	}
}

func testTxPipelinedIsolated(t *testing.T, client *kv.Client) {
	ctx := context.Background()
	key := "kvtest:tx"
	defer client.Cmd(kv.RolePrimary).Del(ctx, key)

	cmds, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, key, 5)
		pipe.IncrBy(ctx, key, 2)
		return nil
	})
	if err != nil {
		t.Fatalf("TxPipelined failed: %v", err)
	}
	if got := cmds[1].(*redis.IntCmd).Val(); got != 7 {
		t.Fatalf("Expected 7, got %d", got)
	}
	if client.InBatch() {
		t.Fatalf("TxPipelined must not open the shared batch")
	}
}

func testExpireAndTTL(t *testing.T, client *kv.Client) {
	ctx := context.Background()
	key := "kvtest:ttl"
	cmd := client.Cmd(kv.RolePrimary)
	defer cmd.Del(ctx, key)

	if ttl := cmd.TTL(ctx, key).Val(); ttl != -2 {
		t.Fatalf("Expected -2 for a missing key, got %v", ttl)
	}
	cmd.Set(ctx, key, "v", 0)
	if ttl := cmd.TTL(ctx, key).Val(); ttl != -1 {
		t.Fatalf("Expected -1 for a key without expiry, got %v", ttl)
	}
	ok, err := cmd.Expire(ctx, key, time.Minute).Result()
	if err != nil || !ok {
		t.Fatalf("Expire failed: ok=%v err=%v", ok, err)
	}
	if ttl := cmd.TTL(ctx, key).Val(); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("Expected ttl within (0, 1m], got %v", ttl)
	}
}
