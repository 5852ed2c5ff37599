package treefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseNodeType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want NodeType
		ok   bool
	}{
		{"directory", DirNodeType, true},
		{"Dir", DirNodeType, true},
		{" FILE ", FileNodeType, true},
		{"link", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseNodeType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewRoot(t *testing.T) {
	t.Parallel()
	root := NewRoot()

	assert.True(t, root.IsRoot())
	assert.True(t, root.IsDir())
	assert.Equal(t, "", root.ParentName())
	assert.NotNil(t, root.Children)
}

func TestNode_Children(t *testing.T) {
	t.Parallel()
	root := NewRoot()
	a := &Node{Name: "a", Type: DirNodeType, Parent: strPtr(RootName)}
	b := &Node{Name: "b", Type: FileNodeType, Parent: strPtr(RootName), ID: strPtr("id")}
	root.AddChild(a)
	root.AddChild(b)

	assert.Equal(t, 1, root.ChildIndex("b"))
	assert.Equal(t, -1, root.ChildIndex("zz"))
	got, ok := root.GetChild("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	removed, ok := root.RemoveChild("a")
	require.True(t, ok)
	assert.Same(t, a, removed)
	assert.Equal(t, []*Node{b}, root.Children)

	_, ok = root.RemoveChild("a")
	assert.False(t, ok)
}

func TestNode_ContainsAndCount(t *testing.T) {
	t.Parallel()
	leaf := &Node{Name: "leaf", Type: FileNodeType}
	mid := &Node{Name: "mid", Type: DirNodeType, Children: []*Node{leaf}}
	root := NewRoot()
	root.AddChild(mid)

	assert.True(t, root.Contains(leaf))
	assert.True(t, mid.Contains(mid))
	assert.False(t, leaf.Contains(mid))
	assert.Equal(t, 3, root.Count())
}

func TestNode_Clone(t *testing.T) {
	t.Parallel()
	orig := NewRoot()
	orig.Key = "k"
	orig.AddChild(&Node{Name: "f", Type: FileNodeType, ID: strPtr("id"), Parent: strPtr(RootName)})

	cp := orig.Clone()
	require.Equal(t, orig.Key, cp.Key)
	require.Len(t, cp.Children, 1)
	assert.NotNil(t, cp.Children[0].Children, "nil children normalize to empty")

	*cp.Children[0].ID = "changed"
	cp.Children[0].Name = "g"
	assert.Equal(t, "id", *orig.Children[0].ID)
	assert.Equal(t, "f", orig.Children[0].Name)

	var nilNode *Node
	assert.Nil(t, nilNode.Clone())
}

func TestError(t *testing.T) {
	t.Parallel()
	cause := fmt.Errorf("driver down")
	err := WrapError(KindPersistence, "insert", "failed to persist tree", cause)

	assert.Equal(t, "insert: failed to persist tree: driver down", err.Error())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindPersistence, KindOf(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))

	assert.Equal(t, "remove: not_found", NewError(KindNotFound, "remove", "").Error())
	assert.True(t, KindConstraint.IsClient())
	assert.False(t, KindNotFound.IsClient())
}
