package treefs

import "strings"

// RootName is the name of the single root node of every tree.
const RootName = "root"

// NodeType valid types are DirNodeType "directory", FileNodeType "file"
type NodeType string

const (
	DirNodeType  NodeType = "directory"
	FileNodeType NodeType = "file"
)

// ParseNodeType lowercases t and resolves legacy aliases.
// Returns false if t is not a known type.
func ParseNodeType(t string) (NodeType, bool) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case string(DirNodeType), "dir":
		return DirNodeType, true
	case string(FileNodeType):
		return FileNodeType, true
	}
	return "", false
}

// Node is a directory or file entry of the tree.
// Children are embedded so the root document carries the whole tree.
type Node struct {
	// Key is the store identifier of a persisted document. Only the root has one.
	Key string `json:"_id,omitempty" bson:"-"`
	// ID references the file's content in the flat blob store; nil for directories
	ID       *string  `json:"id" bson:"id"`
	Name     string   `json:"name" bson:"name"`
	Type     NodeType `json:"type" bson:"type"`
	Parent   *string  `json:"parent" bson:"parent"`
	Children []*Node  `json:"children" bson:"children"`
}

// NewRoot returns an empty root directory that has not been persisted yet.
func NewRoot() *Node {
	return &Node{
		Name:     RootName,
		Type:     DirNodeType,
		Children: []*Node{},
	}
}

// IsRoot reports whether n is the tree root
func (n *Node) IsRoot() bool {
	return n.Name == RootName && n.Parent == nil
}

func (n *Node) IsDir() bool {
	return n.Type == DirNodeType
}

// ParentName returns the parent reference or "" for the root.
func (n *Node) ParentName() string {
	if n.Parent == nil {
		return ""
	}
	return *n.Parent
}

// ChildIndex returns the position of the child called name or -1.
func (n *Node) ChildIndex(name string) int {
	for i, ch := range n.Children {
		if ch.Name == name {
			return i
		}
	}
	return -1
}

// GetChild returns the direct child called name.
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	if i := n.ChildIndex(name); i >= 0 {
		return n.Children[i], true
	}
	return nil, false
}

// AddChild appends child. Callers are responsible for the uniqueness check.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// RemoveChild splices the child called name (with its subtree) out of n.
// Returns the detached node.
func (n *Node) RemoveChild(name string) (*Node, bool) {
	i := n.ChildIndex(name)
	if i < 0 {
		return nil, false
	}
	child := n.Children[i]
	n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
	return child, true
}

// Contains reports whether target is n or one of its descendants.
func (n *Node) Contains(target *Node) bool {
	if n == target {
		return true
	}
	for _, ch := range n.Children {
		if ch.Contains(target) {
			return true
		}
	}
	return false
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Count() int {
	cnt := 1
	for _, ch := range n.Children {
		cnt += ch.Count()
	}
	return cnt
}

// Clone returns a deep copy of the subtree rooted at n.
// A nil children slice is normalized to an empty one.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		Key:      n.Key,
		ID:       clonePtr(n.ID),
		Name:     n.Name,
		Type:     n.Type,
		Parent:   clonePtr(n.Parent),
		Children: CloneChildren(n.Children),
	}
	return cp
}

// CloneChildren deep copies a children snapshot.
func CloneChildren(children []*Node) []*Node {
	out := make([]*Node, 0, len(children))
	for _, ch := range children {
		out = append(out, ch.Clone())
	}
	return out
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
