package server

import (
	"context"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Snapshotter returns the current tree. Every mount callback reads a fresh snapshot.
type Snapshotter interface {
	Get(ctx context.Context) (*treefs.Node, error)
}

// Mount serves a read-only view of the tree over FUSE.
type Mount struct {
	tree   Snapshotter
	cfg    *config.Config
	server *fuse.Server
}

// NewMount creates a Mount instance given your config.
func NewMount(cfg *config.Config, tree Snapshotter) *Mount {
	return &Mount{tree: tree, cfg: cfg}
}

// Serve mounts and serves the tree at the given mountPoint.
// Returns once the mount is ready.
func (m *Mount) Serve(mountPoint string) error {
	opts := m.cfg.MountOptions
	attrTimeout := time.Duration(m.cfg.AttrTimeout * float64(time.Second))
	entryTimeout := time.Duration(m.cfg.EntryTimeout * float64(time.Second))

	srv, err := fs.Mount(mountPoint, newRootNode(m.tree), &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug || m.cfg.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("FuseServer", util.DebugLevel),
		},
		AttrTimeout:  &attrTimeout,
		EntryTimeout: &entryTimeout,
	})
	if err != nil {
		return err
	}
	m.server = srv
	return nil
}

func (m *Mount) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- m.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the mount is unmounted.
func (m *Mount) Wait() {
	if m.server != nil {
		m.server.Wait()
	}
}

// Unmount cleanly unmounts the tree.
func (m *Mount) Unmount() error {
	if m.server == nil {
		return nil
	}
	return m.server.Unmount()
}
