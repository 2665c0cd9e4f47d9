// Package kv owns the single store connection shared by every structure.
//
// A Client pairs a primary go-redis connection with an optional read replica
// and routes each command by Role. It also carries the process-wide MULTI/EXEC
// batch opened with Multi, mirroring a connection placed in MULTI state.
//
// Backends register themselves by import:
//
//	import (
//		"github.com/RogerJin0910/xredis/pkg/kv"
//		_ "github.com/RogerJin0910/xredis/pkg/kv/memory"
//		_ "github.com/RogerJin0910/xredis/pkg/kv/redis"
//	)
//
//	shared := kv.NewShared(kv.Config{
//		Backend:  kv.BackendRedis,
//		RedisURL: "redis://localhost:6379/0",
//	})
//	defer shared.Close()
//
//	client, err := shared.Acquire(ctx)
//	if err != nil {
//		if errors.Is(err, kv.ErrBackendUnavailable) {
//			log.Println("redis is down")
//		}
//		log.Fatal(err)
//	}
//	n, err := client.Cmd(kv.RoleReplica).Exists(ctx, "XRedis:Str:greeting").Result()
//
// The memory backend runs an embedded Redis-compatible server (miniredis) in
// process, which is convenient for development and tests. The redis backend
// connects to a real server.
package kv
