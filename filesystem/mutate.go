package filesystem

import (
	"context"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
)

// Insert appends a new node built from req under the node named req.Parent.
func (fs *FileSystem) Insert(ctx context.Context, req *treefs.InsertRequest) (root *treefs.Node, err error) {
	start := time.Now()
	defer func() { fs.observe("insert", start, err) }()
	logger := util.GetLogger("FS.Insert")

	req, err = normalizeInsert(req)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("name", req.Name).Str("type", string(req.Type)).Str("parent", req.Parent).Msg("Insert called")

	root, err = fs.mutate(ctx, "insert", func(root *treefs.Node) error {
		if req.Name == treefs.RootName {
			return treefs.NewError(treefs.KindConstraint, "insert", msgReservedName)
		}
		parent, ok := Locate(root, req.Parent)
		if !ok {
			return treefs.NewError(treefs.KindNotFound, "insert", msgParentNotFound)
		}
		if _, dup := parent.GetChild(req.Name); dup {
			return treefs.NewError(treefs.KindConstraint, "insert", msgDuplicate)
		}
		if parent.Type == treefs.FileNodeType {
			return treefs.NewError(treefs.KindConstraint, "insert", msgFileParent)
		}
		parent.AddChild(&treefs.Node{
			ID:       req.ID,
			Name:     req.Name,
			Type:     req.Type,
			Parent:   util.Pointer(parent.Name),
			Children: req.Children,
		})
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Str("name", req.Name).Str("parent", req.Parent).Msg("Insert rejected")
		return nil, err
	}
	logger.Info().Str("name", req.Name).Str("parent", req.Parent).Msg("Inserted node")
	return root, nil
}

// Remove splices the child req.Name (and its whole subtree) out of req.Parent.
func (fs *FileSystem) Remove(ctx context.Context, req *treefs.RemoveRequest) (root *treefs.Node, err error) {
	start := time.Now()
	defer func() { fs.observe("remove", start, err) }()
	logger := util.GetLogger("FS.Remove")

	req, err = normalizeRemove(req)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("name", req.Name).Str("parent", req.Parent).Msg("Remove called")

	root, err = fs.mutate(ctx, "remove", func(root *treefs.Node) error {
		if req.Name == treefs.RootName {
			return treefs.NewError(treefs.KindConstraint, "remove", msgRemoveRoot)
		}
		parent, ok := Locate(root, req.Parent)
		if !ok {
			return treefs.NewError(treefs.KindNotFound, "remove", msgParentNotFound)
		}
		if _, ok := parent.RemoveChild(req.Name); !ok {
			return treefs.NewError(treefs.KindNotFound, "remove", msgDeleteNotFound)
		}
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Str("name", req.Name).Str("parent", req.Parent).Msg("Remove rejected")
		return nil, err
	}
	logger.Info().Str("name", req.Name).Str("parent", req.Parent).Msg("Removed node")
	return root, nil
}

// Rename changes the name of the child req.Name of req.Parent to req.NewName.
//
// Parent references are names, so the direct children of the renamed node are
// updated to point at the new name. Deeper descendants reference their own
// immediate parent, whose name is unchanged, and are left alone.
func (fs *FileSystem) Rename(ctx context.Context, req *treefs.RenameRequest) (root *treefs.Node, err error) {
	start := time.Now()
	defer func() { fs.observe("rename", start, err) }()
	logger := util.GetLogger("FS.Rename")

	req, err = normalizeRename(req)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("name", req.Name).Str("parent", req.Parent).Str("newName", req.NewName).Msg("Rename called")

	root, err = fs.mutate(ctx, "rename", func(root *treefs.Node) error {
		if req.Name == treefs.RootName {
			return treefs.NewError(treefs.KindConstraint, "rename", msgRenameRoot)
		}
		if req.NewName == treefs.RootName {
			return treefs.NewError(treefs.KindConstraint, "rename", msgReservedName)
		}
		parent, ok := Locate(root, req.Parent)
		if !ok {
			return treefs.NewError(treefs.KindNotFound, "rename", msgParentNotFound)
		}
		if _, dup := parent.GetChild(req.NewName); dup {
			return treefs.NewError(treefs.KindConstraint, "rename", msgDuplicate)
		}
		node, ok := parent.GetChild(req.Name)
		if !ok {
			return treefs.NewError(treefs.KindNotFound, "rename", msgRenameNotFound)
		}
		node.Name = req.NewName
		for _, ch := range node.Children {
			ch.Parent = util.Pointer(req.NewName)
		}
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Str("name", req.Name).Str("newName", req.NewName).Msg("Rename rejected")
		return nil, err
	}
	logger.Info().Str("name", req.Name).Str("newName", req.NewName).Msg("Renamed node")
	return root, nil
}

// Move detaches the child req.Name of req.Parent and appends it to req.NewParent.
// All checks run before anything is detached so a rejected move leaves the tree as is.
func (fs *FileSystem) Move(ctx context.Context, req *treefs.MoveRequest) (root *treefs.Node, err error) {
	start := time.Now()
	defer func() { fs.observe("move", start, err) }()
	logger := util.GetLogger("FS.Move")

	req, err = normalizeMove(req)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("name", req.Name).Str("parent", req.Parent).Str("newParent", req.NewParent).Msg("Move called")

	root, err = fs.mutate(ctx, "move", func(root *treefs.Node) error {
		if req.Name == treefs.RootName {
			return treefs.NewError(treefs.KindConstraint, "move", msgMoveRoot)
		}
		parent, ok := Locate(root, req.Parent)
		if !ok {
			return treefs.NewError(treefs.KindNotFound, "move", msgParentNotFound)
		}
		node, ok := parent.GetChild(req.Name)
		if !ok {
			return treefs.NewError(treefs.KindNotFound, "move", msgMoveNotFound)
		}
		newParent, ok := Locate(root, req.NewParent)
		if !ok {
			return treefs.NewError(treefs.KindNotFound, "move", msgNewParent)
		}
		if _, dup := newParent.GetChild(req.Name); dup {
			return treefs.NewError(treefs.KindConstraint, "move", msgDuplicate)
		}
		if newParent.Type == treefs.FileNodeType {
			return treefs.NewError(treefs.KindConstraint, "move", msgFileParent)
		}
		if node.Contains(newParent) {
			return treefs.NewError(treefs.KindConstraint, "move", msgMoveIntoSelf)
		}

		parent.RemoveChild(req.Name)
		node.Parent = util.Pointer(newParent.Name)
		newParent.AddChild(node)
		return nil
	})
	if err != nil {
		logger.Info().Err(err).Str("name", req.Name).Str("newParent", req.NewParent).Msg("Move rejected")
		return nil, err
	}
	logger.Info().Str("name", req.Name).Str("parent", req.Parent).Str("newParent", req.NewParent).Msg("Moved node")
	return root, nil
}
