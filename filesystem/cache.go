package filesystem

import (
	"context"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
)

// treeCache holds the process-local copy of the root document.
// It is not thread-safe; FileSystem.mu guards every access.
type treeCache struct {
	store treefs.Store
	root  *treefs.Node // nil until loaded or after invalidate
}

func newTreeCache(store treefs.Store) *treeCache {
	return &treeCache{store: store}
}

// cached returns the loaded root or nil
func (c *treeCache) cached() *treefs.Node {
	return c.root
}

// ensureRoot returns the cached root, loading it from the store on first use or
// after invalidation. An empty root is created if the store has none.
func (c *treeCache) ensureRoot(ctx context.Context) (*treefs.Node, error) {
	if c.root != nil {
		return c.root, nil
	}
	logger := util.GetLogger("FS.ensureRoot")

	root, err := c.store.FindRoot(ctx)
	if err != nil {
		return nil, treefs.WrapError(treefs.KindPersistence, "load", "failed to load root", err)
	}
	if root == nil {
		logger.Info().Msg("No root document found, creating one")
		root, err = c.store.CreateRoot(ctx, treefs.NewRoot())
		if err != nil {
			return nil, treefs.WrapError(treefs.KindPersistence, "load", "failed to create root", err)
		}
	}
	if root.Children == nil {
		root.Children = []*treefs.Node{}
	}
	canonicalizeTypes(root)
	logger.Trace().Str("key", root.Key).Int("children", len(root.Children)).Msg("Root loaded")
	c.root = root
	return root, nil
}

// invalidate drops the cached root so the next ensureRoot reloads it.
func (c *treeCache) invalidate() {
	c.root = nil
}

// refresh invalidates then reloads from the store.
func (c *treeCache) refresh(ctx context.Context) (*treefs.Node, error) {
	c.invalidate()
	return c.ensureRoot(ctx)
}

// canonicalizeTypes rewrites legacy type aliases such as "dir" found in stored
// documents. Unknown types are left untouched.
func canonicalizeTypes(root *treefs.Node) {
	Walk(root, func(n *treefs.Node) bool {
		if typ, ok := treefs.ParseNodeType(string(n.Type)); ok {
			n.Type = typ
		}
		return true
	})
}
