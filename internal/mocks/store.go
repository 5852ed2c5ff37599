package mocks

import (
	"context"

	"github.com/brettbedarf/treefs"
	"github.com/stretchr/testify/mock"
)

// MockStore implements treefs.Store for testing across packages
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindRoot(ctx context.Context) (*treefs.Node, error) {
	args := m.Called(ctx)

	// Handle function return types (for tests that need a fresh copy per call)
	if fn, ok := args.Get(0).(func(context.Context) *treefs.Node); ok {
		return fn(ctx), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treefs.Node), args.Error(1)
}

func (m *MockStore) CreateRoot(ctx context.Context, root *treefs.Node) (*treefs.Node, error) {
	args := m.Called(ctx, root)

	if fn, ok := args.Get(0).(func(context.Context, *treefs.Node) *treefs.Node); ok {
		return fn(ctx, root), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treefs.Node), args.Error(1)
}

func (m *MockStore) ReplaceChildren(ctx context.Context, rootKey string, children []*treefs.Node) (treefs.UpdateResult, error) {
	args := m.Called(ctx, rootKey, children)
	return args.Get(0).(treefs.UpdateResult), args.Error(1)
}

func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ treefs.Store = (*MockStore)(nil)

// MockRecorder implements treefs.Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveOp(op string, seconds float64, err error) {
	m.Called(op, seconds, err)
}

func (m *MockRecorder) SetNodeCount(n int) {
	m.Called(n)
}

var _ treefs.Recorder = (*MockRecorder)(nil)
