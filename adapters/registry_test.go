package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeOpener(s treefs.Store, err error) Opener {
	return func(context.Context, *config.Config) (treefs.Store, error) {
		return s, err
	}
}

func TestRegister_SingleOpener(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	store := &mocks.MockStore{}

	r.Register("test", storeOpener(store, nil))
	opener, err := r.GetOpener("test")
	require.NoError(t, err)

	got, err := opener(context.Background(), config.NewDefaultConfig())
	require.NoError(t, err)
	assert.Same(t, store, got)
}

func TestRegister_CaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("Test", storeOpener(&mocks.MockStore{}, nil))

	_, err := r.GetOpener("TEST")
	assert.NoError(t, err)
}

func TestRegister_DuplicateOpener(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	store1 := &mocks.MockStore{}
	store2 := &mocks.MockStore{}

	r.Register("test", storeOpener(store1, nil))
	r.Register("test", storeOpener(store2, nil))

	cfg := config.NewDefaultConfig()
	cfg.StoreBackend = "test"
	got, err := r.Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, store1, got, "first registration must win")
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	r := NewRegistry()

	for i := range 100 {
		wg.Go(func() {
			backend := fmt.Sprintf("test%d", i)
			r.Register(backend, storeOpener(&mocks.MockStore{}, nil))
			_, err := r.GetOpener(backend)
			assert.NoError(t, err)
		})
	}
	wg.Wait()
}

func TestGetOpener_NonExistent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.GetOpener("nonexistent")
	assert.Error(t, err)
}

func TestOpen_OpenerError(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	expErr := fmt.Errorf("test error")
	r.Register("test", storeOpener(nil, expErr))

	cfg := config.NewDefaultConfig()
	cfg.StoreBackend = "test"
	_, err := r.Open(context.Background(), cfg)
	assert.Equal(t, expErr, err)
}

func TestRegisterBuiltins_Subset(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterBuiltins(MemoryBackend)

	_, err := r.GetOpener(MemoryBackend)
	require.NoError(t, err)
	_, err = r.GetOpener(MongoBackend)
	assert.Error(t, err, "only requested builtins are registered")
}

func TestOpen_Memory(t *testing.T) {
	t.Parallel()

	store, err := Open(context.Background(), config.NewDefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}
