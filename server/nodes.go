package server

import (
	"context"
	"hash/fnv"
	"strings"
	"syscall"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// IDXattr exposes a file node's blob id
const IDXattr = "user.treefs.id"

const (
	dirMode  = syscall.S_IFDIR | 0o555
	fileMode = syscall.S_IFREG | 0o444
)

// treeNode is one directory or file of the mounted tree, addressed by its
// path of names from the root.
type treeNode struct {
	fs.Inode
	tree Snapshotter
	path []string
}

var (
	_ fs.NodeLookuper    = (*treeNode)(nil)
	_ fs.NodeReaddirer   = (*treeNode)(nil)
	_ fs.NodeGetattrer   = (*treeNode)(nil)
	_ fs.NodeGetxattrer  = (*treeNode)(nil)
	_ fs.NodeListxattrer = (*treeNode)(nil)
	_ fs.NodeOpener      = (*treeNode)(nil)
	_ fs.NodeReader      = (*treeNode)(nil)
)

func newRootNode(tree Snapshotter) *treeNode {
	return &treeNode{tree: tree}
}

// resolve walks path from root by child name.
func resolve(root *treefs.Node, path []string) (*treefs.Node, bool) {
	cur := root
	for _, name := range path {
		next, ok := cur.GetChild(name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// inoFor derives a stable inode number from a node path.
func inoFor(path []string) uint64 {
	if len(path) == 0 {
		return fuse.FUSE_ROOT_ID
	}
	h := fnv.New64a()
	h.Write([]byte(strings.Join(path, "/")))
	// keep clear of the root id
	return h.Sum64() | 1<<63
}

func modeFor(n *treefs.Node) uint32 {
	if n.IsDir() {
		return dirMode
	}
	return fileMode
}

func (n *treeNode) snapshot(ctx context.Context) (*treefs.Node, syscall.Errno) {
	root, err := n.tree.Get(ctx)
	if err != nil {
		logger := util.GetLogger("Mount")
		logger.Error().Err(err).Strs("path", n.path).Msg("Failed to load tree")
		return nil, syscall.EIO
	}
	node, ok := resolve(root, n.path)
	if !ok {
		return nil, syscall.ENOENT
	}
	return node, fs.OK
}

func (n *treeNode) childPath(name string) []string {
	p := make([]string, len(n.path), len(n.path)+1)
	copy(p, n.path)
	return append(p, name)
}

func fillAttr(node *treefs.Node, path []string, out *fuse.Attr) {
	out.Ino = inoFor(path)
	out.Mode = modeFor(node)
	out.Nlink = 1
	if node.IsDir() {
		out.Nlink = uint32(2 + len(node.Children))
	}
}

func (n *treeNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	node, errno := n.snapshot(ctx)
	if errno != fs.OK {
		return nil, errno
	}
	child, ok := node.GetChild(util.NormalizeName(name))
	if !ok {
		return nil, syscall.ENOENT
	}
	path := n.childPath(child.Name)
	fillAttr(child, path, &out.Attr)

	embed := &treeNode{tree: n.tree, path: path}
	return n.NewInode(ctx, embed, fs.StableAttr{Mode: modeFor(child), Ino: inoFor(path)}), fs.OK
}

func (n *treeNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	node, errno := n.snapshot(ctx)
	if errno != fs.OK {
		return nil, errno
	}
	return fs.NewListDirStream(dirEntries(node, n.path)), fs.OK
}

func dirEntries(node *treefs.Node, path []string) []fuse.DirEntry {
	entries := make([]fuse.DirEntry, 0, len(node.Children))
	for _, ch := range node.Children {
		childPath := append(append([]string{}, path...), ch.Name)
		entries = append(entries, fuse.DirEntry{
			Name: ch.Name,
			Mode: modeFor(ch),
			Ino:  inoFor(childPath),
		})
	}
	return entries
}

func (n *treeNode) Getattr(ctx context.Context, _ fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	node, errno := n.snapshot(ctx)
	if errno != fs.OK {
		return errno
	}
	fillAttr(node, n.path, &out.Attr)
	return fs.OK
}

func (n *treeNode) Getxattr(ctx context.Context, attr string, dest []byte) (uint32, syscall.Errno) {
	node, errno := n.snapshot(ctx)
	if errno != fs.OK {
		return 0, errno
	}
	if attr != IDXattr || node.ID == nil {
		return 0, syscall.ENODATA
	}
	val := *node.ID
	if len(dest) < len(val) {
		return uint32(len(val)), syscall.ERANGE
	}
	return uint32(copy(dest, val)), fs.OK
}

func (n *treeNode) Listxattr(ctx context.Context, dest []byte) (uint32, syscall.Errno) {
	node, errno := n.snapshot(ctx)
	if errno != fs.OK {
		return 0, errno
	}
	if node.ID == nil {
		return 0, fs.OK
	}
	list := IDXattr + "\x00"
	if len(dest) < len(list) {
		return uint32(len(list)), syscall.ERANGE
	}
	return uint32(copy(dest, list)), fs.OK
}

// Open allows read-only opens of files. Content lives in the blob store, so reads are empty.
func (n *treeNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	node, errno := n.snapshot(ctx)
	if errno != fs.OK {
		return nil, 0, errno
	}
	if node.IsDir() {
		return nil, 0, syscall.EISDIR
	}
	return nil, fuse.FOPEN_KEEP_CACHE, fs.OK
}

func (n *treeNode) Read(_ context.Context, _ fs.FileHandle, _ []byte, _ int64) (fuse.ReadResult, syscall.Errno) {
	return fuse.ReadResultData(nil), fs.OK
}
