package filesystem

import (
	"context"
	"sync"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
)

// FileSystem owns the cached tree and serializes every mutation against it.
//
// Mutations hold mu exclusively from resolution until the cache has been
// refreshed from the store. Reads take mu shared and return deep copies, so a
// read issued during a mutation blocks until the mutation completes and never
// observes a partially mutated tree.
type FileSystem struct {
	mu       sync.RWMutex
	cache    *treeCache
	store    treefs.Store
	recorder treefs.Recorder
}

// Option configures a FileSystem
type Option func(*FileSystem)

// WithRecorder reports every operation outcome to r.
func WithRecorder(r treefs.Recorder) Option {
	return func(fs *FileSystem) {
		fs.recorder = r
	}
}

func NewFS(store treefs.Store, opts ...Option) *FileSystem {
	fs := &FileSystem{
		cache: newTreeCache(store),
		store: store,
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

var _ treefs.TreeOperator = (*FileSystem)(nil)

// Get returns a snapshot of the whole tree, loading the root on first use.
// Calling Get twice without an intervening mutation returns equal snapshots.
func (fs *FileSystem) Get(ctx context.Context) (root *treefs.Node, err error) {
	start := time.Now()
	defer func() { fs.observe("get", start, err) }()

	fs.mu.RLock()
	if cached := fs.cache.cached(); cached != nil {
		root = cached.Clone()
		fs.mu.RUnlock()
		return root, nil
	}
	fs.mu.RUnlock()

	fs.mu.Lock()
	defer fs.mu.Unlock()
	cached, err := fs.cache.ensureRoot(ctx)
	if err != nil {
		return nil, err
	}
	return cached.Clone(), nil
}

// Locate returns a copy of the first node called name in breadth-first order.
func (fs *FileSystem) Locate(ctx context.Context, name string) (*treefs.Node, error) {
	root, err := fs.Get(ctx)
	if err != nil {
		return nil, err
	}
	name = util.NormalizeName(name)
	node, ok := Locate(root, name)
	if !ok {
		return nil, treefs.NewError(treefs.KindNotFound, "locate", "Cannot find node "+name)
	}
	return node, nil
}

// Invalidate drops the cached tree; the next access reloads it from the store.
func (fs *FileSystem) Invalidate() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.cache.invalidate()
}

// mutate runs apply against a working copy of the cached root inside the
// critical section, commits the copy's children and refreshes the cache.
// The cached tree is never modified in place.
func (fs *FileSystem) mutate(ctx context.Context, op string, apply func(root *treefs.Node) error) (*treefs.Node, error) {
	logger := util.GetLogger("FS.commit")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	cached, err := fs.cache.ensureRoot(ctx)
	if err != nil {
		return nil, err
	}
	working := cached.Clone()
	if err := apply(working); err != nil {
		return nil, err
	}

	res, err := fs.store.ReplaceChildren(ctx, working.Key, working.Children)
	if err != nil {
		fs.cache.invalidate()
		logger.Error().Err(err).Str("op", op).Str("key", working.Key).Msg("Failed to persist children")
		return nil, treefs.WrapError(treefs.KindPersistence, op, "failed to persist tree", err)
	}
	if res.ModifiedCount < 1 {
		// the cached copy may be stale; reload it on next access
		fs.cache.invalidate()
		logger.Warn().Str("op", op).Str("key", working.Key).
			Int64("matched", res.MatchedCount).Msg("Store reported no modified documents")
		return nil, treefs.NewError(treefs.KindWriteNotApplied, op, "write not applied")
	}

	root, err := fs.cache.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if fs.recorder != nil {
		fs.recorder.SetNodeCount(root.Count())
	}
	return root.Clone(), nil
}

func (fs *FileSystem) observe(op string, start time.Time, err error) {
	if fs.recorder == nil {
		return
	}
	fs.recorder.ObserveOp(op, time.Since(start).Seconds(), err)
}
