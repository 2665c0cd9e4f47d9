package structure

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"

	"github.com/RogerJin0910/xredis/pkg/kv"
	"github.com/RogerJin0910/xredis/pkg/kv/kvtest"
)

func newTestClient(t *testing.T) (*kv.Client, *miniredis.Miniredis, context.Context) {
	t.Helper()
	client, srv := kvtest.NewMiniredis(t)
	return client, srv, context.Background()
}

// MockRecorder captures pool and refresh events
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordPoolHit(ctx context.Context, kind string) {
	m.Called(ctx, kind)
}

func (m *MockRecorder) RecordPoolMiss(ctx context.Context, kind string) {
	m.Called(ctx, kind)
}

func (m *MockRecorder) RecordRefresh(ctx context.Context, kind string) {
	m.Called(ctx, kind)
}

var _ Recorder = (*MockRecorder)(nil)
