package treefs

// InsertRequest adds a new node under Parent.
// Field presence is checked by the requests package before reaching the core;
// the core re-checks what it relies on.
type InsertRequest struct {
	Name     string
	Type     NodeType
	Parent   string
	ID       *string // required for FileNodeType
	Children []*Node
}

// RemoveRequest discards the child Name of Parent together with its subtree.
type RemoveRequest struct {
	Name   string
	Parent string
}

// RenameRequest renames the child Name of Parent to NewName.
type RenameRequest struct {
	Name    string
	Parent  string
	NewName string
}

// MoveRequest relocates the child Name of Parent under NewParent.
type MoveRequest struct {
	ID        *string // echoed by clients; not used for resolution
	Name      string
	Parent    string
	NewParent string
}
