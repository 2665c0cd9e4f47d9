package memory

import (
	"github.com/RogerJin0910/xredis/pkg/kv"
)

func init() {
	kv.RegisterBackend(kv.BackendMemory, func(cfg kv.Config) (*kv.Client, error) {
		e, err := Start(cfg)
		if err != nil {
			return nil, err
		}
		return e.Client, nil
	})
}
