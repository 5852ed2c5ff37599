package adapters

import (
	"context"
	"reflect"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

// MemoryStore keeps root documents in process memory.
// Every value crossing the boundary is deep copied so callers never share nodes with the store.
type MemoryStore struct {
	docs   *xsync.Map[string, *treefs.Node]
	logger util.Logger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   xsync.NewMap[string, *treefs.Node](),
		logger: util.GetLogger("MemoryStore"),
	}
}

func (s *MemoryStore) FindRoot(ctx context.Context) (*treefs.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found *treefs.Node
	s.docs.Range(func(_ string, doc *treefs.Node) bool {
		if doc.IsRoot() {
			found = doc.Clone()
			return false
		}
		return true
	})
	return found, nil
}

func (s *MemoryStore) CreateRoot(ctx context.Context, root *treefs.Node) (*treefs.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New("memory store: nil root")
	}
	doc := root.Clone()
	doc.Key = uuid.NewString()
	s.docs.Store(doc.Key, doc)
	s.logger.Debug().Str("key", doc.Key).Msg("Created root document")
	return doc.Clone(), nil
}

func (s *MemoryStore) ReplaceChildren(ctx context.Context, rootKey string, children []*treefs.Node) (treefs.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return treefs.UpdateResult{}, err
	}
	var res treefs.UpdateResult
	next := treefs.CloneChildren(children)
	s.docs.Compute(rootKey, func(doc *treefs.Node, loaded bool) (*treefs.Node, xsync.ComputeOp) {
		if !loaded {
			return nil, xsync.CancelOp
		}
		res.MatchedCount = 1
		if reflect.DeepEqual(doc.Children, next) {
			return doc, xsync.CancelOp
		}
		res.ModifiedCount = 1
		updated := doc.Clone()
		updated.Children = next
		return updated, xsync.UpdateOp
	})
	return res, nil
}

// Len returns the number of documents held
func (s *MemoryStore) Len() int {
	return s.docs.Size()
}

func (s *MemoryStore) Close(context.Context) error {
	s.docs.Clear()
	return nil
}
