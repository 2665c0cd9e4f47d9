// Package memory registers the kv backend backed by an embedded,
// Redis-compatible server running inside the process.
package memory

import (
	"fmt"

	"github.com/alicebob/miniredis/v2"

	"github.com/RogerJin0910/xredis/pkg/kv"
)

// Embedded is a running in-process server together with the client bound to it.
type Embedded struct {
	Server *miniredis.Miniredis
	Client *kv.Client
}

// Start launches a server on a random loopback port and connects to it.
// Closing the client stops the server. cfg.ReplicaURL is ignored: both
// roles are served by the embedded server.
func Start(cfg kv.Config) (*Embedded, error) {
	srv, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("start embedded store: %w", err)
	}

	client, err := kv.Dial("redis://"+srv.Addr(), "", cfg)
	if err != nil {
		srv.Close()
		return nil, err
	}
	client.OnClose(func() error {
		srv.Close()
		return nil
	})

	return &Embedded{Server: srv, Client: client}, nil
}
