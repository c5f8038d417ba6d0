// Package fusefs adapts a docmodel.Tree to the go-fuse v2 node-tree API,
// the single place where document-model errors are translated to POSIX
// errno values (errors.go) and where the "bookmarked" extended attribute is
// exposed (xattr.go).
package fusefs

import (
	"fmt"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/nick8325/remarkable-fs/internal/docmodel"
)

// Options controls how the filesystem is presented to the kernel.
type Options struct {
	VolumeName string
	AllowOther bool
	Debug      bool
}

// FS is a mountable view of a document tree.
type FS struct {
	tree *docmodel.Tree
	opts Options
}

// New returns a filesystem view of tree, ready to Mount.
func New(tree *docmodel.Tree, opts Options) *FS {
	return &FS{tree: tree, opts: opts}
}

// Mount mounts the filesystem at mountpoint and returns the running FUSE
// server. The caller is responsible for calling server.Unmount() (or
// server.Wait()) on exit; mirrors the teacher's own Mount/Unmount split so
// callers keep their own signal-handling and host-control lifecycle
// (internal/hostctl) around the call.
func (f *FS) Mount(mountpoint string) (*fuse.Server, error) {
	name := f.opts.VolumeName
	if name == "" {
		name = "remarkable"
	}

	root := &dirNode{node: f.tree.Root()}
	opts := &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:           "remarkablefs",
			FsName:         name,
			AllowOther:     f.opts.AllowOther,
			SingleThreaded: true,
			Debug:          f.opts.Debug,
		},
	}

	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", mountpoint, err)
	}
	return server, nil
}
