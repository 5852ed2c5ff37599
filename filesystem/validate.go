package filesystem

import (
	"fmt"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
)

// Validation messages
const (
	msgInsertFields = "Request must include `name`, `type`, `parent`, `id` and `children`"
	msgRemoveFields = "Request must include `name` and `parent`"
	msgRenameFields = "Request must include `name`, `parent`, `update`"
	msgMoveFields   = "Request must include `id`, `name`, `parent` and `update`"
	msgFileID       = "Nodes of type `file` must include a non-null `id`"
	msgDirID        = "Nodes of type `directory` must have a null `id`"
)

// Constraint and not-found messages
const (
	msgDuplicate      = "Cannot add duplicate children"
	msgFileParent     = "Cannot add child to node type of `file`"
	msgReservedName   = "Cannot use reserved name `root`"
	msgRemoveRoot     = "Cannot remove root node"
	msgRenameRoot     = "Cannot rename root node"
	msgMoveRoot       = "Cannot move root node"
	msgMoveIntoSelf   = "Cannot move node into itself or its descendants"
	msgParentNotFound = "Cannot find parent node"
	msgNewParent      = "Cannot find new parent node"
	msgDeleteNotFound = "Cannot find node to delete"
	msgRenameNotFound = "Cannot find node to rename"
	msgMoveNotFound   = "Cannot find node to move"
)

func validationErr(op, msg string) error {
	return treefs.NewError(treefs.KindValidation, op, msg)
}

// normalizeInsert returns a lowercased copy of req or a validation error.
func normalizeInsert(req *treefs.InsertRequest) (*treefs.InsertRequest, error) {
	if req == nil {
		return nil, validationErr("insert", msgInsertFields)
	}
	out := &treefs.InsertRequest{
		Name:   util.NormalizeName(req.Name),
		Parent: util.NormalizeName(req.Parent),
		ID:     req.ID,
	}
	typ, ok := treefs.ParseNodeType(string(req.Type))
	if out.Name == "" || out.Parent == "" || !ok {
		return nil, validationErr("insert", msgInsertFields)
	}
	out.Type = typ
	if typ == treefs.FileNodeType && (req.ID == nil || *req.ID == "") {
		return nil, validationErr("insert", msgFileID)
	}
	if typ == treefs.DirNodeType && req.ID != nil {
		return nil, validationErr("insert", msgDirID)
	}

	children := treefs.CloneChildren(req.Children)
	if typ == treefs.FileNodeType && len(children) > 0 {
		return nil, validationErr("insert", msgFileParent)
	}
	if err := normalizeSubtree(out.Name, children); err != nil {
		return nil, err
	}
	out.Children = children
	return out, nil
}

// normalizeSubtree checks the embedded children of an inserted node in place:
// names lowercased and unique per level, files are leaves carrying an id,
// directories carry none, and each parent reference names the enclosing node.
func normalizeSubtree(parent string, children []*treefs.Node) error {
	seen := make(map[string]struct{}, len(children))
	for _, ch := range children {
		if ch == nil {
			return validationErr("insert", fmt.Sprintf("null child under %q", parent))
		}
		ch.Key = ""
		ch.Name = util.NormalizeName(ch.Name)
		if ch.Name == "" {
			return validationErr("insert", fmt.Sprintf("child of %q is missing `name`", parent))
		}
		if ch.Name == treefs.RootName {
			return treefs.NewError(treefs.KindConstraint, "insert", msgReservedName)
		}
		if _, dup := seen[ch.Name]; dup {
			return treefs.NewError(treefs.KindConstraint, "insert", msgDuplicate)
		}
		seen[ch.Name] = struct{}{}

		typ, ok := treefs.ParseNodeType(string(ch.Type))
		if !ok {
			return validationErr("insert", fmt.Sprintf("child %q has invalid `type` %q", ch.Name, ch.Type))
		}
		ch.Type = typ
		if ch.Parent != nil && util.NormalizeName(*ch.Parent) != parent {
			return treefs.NewError(treefs.KindConstraint, "insert",
				fmt.Sprintf("child %q references parent %q instead of %q", ch.Name, *ch.Parent, parent))
		}
		ch.Parent = util.Pointer(parent)
		if ch.Children == nil {
			ch.Children = []*treefs.Node{}
		}
		if typ == treefs.FileNodeType {
			if ch.ID == nil || *ch.ID == "" {
				return validationErr("insert", msgFileID)
			}
			if len(ch.Children) > 0 {
				return treefs.NewError(treefs.KindConstraint, "insert", msgFileParent)
			}
			continue
		}
		if ch.ID != nil {
			return validationErr("insert", msgDirID)
		}
		if err := normalizeSubtree(ch.Name, ch.Children); err != nil {
			return err
		}
	}
	return nil
}

func normalizeRemove(req *treefs.RemoveRequest) (*treefs.RemoveRequest, error) {
	if req == nil {
		return nil, validationErr("remove", msgRemoveFields)
	}
	out := &treefs.RemoveRequest{
		Name:   util.NormalizeName(req.Name),
		Parent: util.NormalizeName(req.Parent),
	}
	if out.Name == "" || out.Parent == "" {
		return nil, validationErr("remove", msgRemoveFields)
	}
	return out, nil
}

func normalizeRename(req *treefs.RenameRequest) (*treefs.RenameRequest, error) {
	if req == nil {
		return nil, validationErr("rename", msgRenameFields)
	}
	out := &treefs.RenameRequest{
		Name:    util.NormalizeName(req.Name),
		Parent:  util.NormalizeName(req.Parent),
		NewName: util.NormalizeName(req.NewName),
	}
	if out.Name == "" || out.Parent == "" || out.NewName == "" {
		return nil, validationErr("rename", msgRenameFields)
	}
	return out, nil
}

func normalizeMove(req *treefs.MoveRequest) (*treefs.MoveRequest, error) {
	if req == nil {
		return nil, validationErr("move", msgMoveFields)
	}
	out := &treefs.MoveRequest{
		ID:        req.ID,
		Name:      util.NormalizeName(req.Name),
		Parent:    util.NormalizeName(req.Parent),
		NewParent: util.NormalizeName(req.NewParent),
	}
	if out.Name == "" || out.Parent == "" || out.NewParent == "" {
		return nil, validationErr("move", msgMoveFields)
	}
	return out, nil
}
