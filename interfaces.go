package treefs

import "context"

// UpdateResult reports how many documents a write touched.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// Store is the persistence adapter holding the durable copy of the tree.
// The whole tree lives in the root document; subtree nodes are embedded in its children.
type Store interface {
	// FindRoot returns the document matching {name: "root", parent: null}
	// or nil with a nil error if there is none.
	FindRoot(ctx context.Context) (*Node, error)
	// CreateRoot inserts root as a new document and returns it with Key set.
	CreateRoot(ctx context.Context, root *Node) (*Node, error)
	// ReplaceChildren overwrites the children field of the document keyed by rootKey.
	// Implementations report ModifiedCount 0 when nothing matched or nothing changed.
	ReplaceChildren(ctx context.Context, rootKey string, children []*Node) (UpdateResult, error)
	// Close releases any connection held by the store
	Close(ctx context.Context) error
}

// TreeOperator is the request/response boundary of the tree core consumed by
// entrypoints (http api, mount, cli).
type TreeOperator interface {
	Get(ctx context.Context) (*Node, error)
	Insert(ctx context.Context, req *InsertRequest) (*Node, error)
	Remove(ctx context.Context, req *RemoveRequest) (*Node, error)
	Rename(ctx context.Context, req *RenameRequest) (*Node, error)
	Move(ctx context.Context, req *MoveRequest) (*Node, error)
}

// Recorder receives the outcome of every tree operation (see internal/metrics).
type Recorder interface {
	ObserveOp(op string, seconds float64, err error)
	SetNodeCount(n int)
}
