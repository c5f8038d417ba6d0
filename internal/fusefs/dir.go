package fusefs

import (
	"context"
	"log"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/nick8325/remarkable-fs/internal/docmodel"
)

// dirNode is a FUSE directory backed by a collection docmodel.Node. The
// root of the mount is a dirNode wrapping the tree's synthetic root.
type dirNode struct {
	fs.Inode
	node *docmodel.Node
}

var _ = (fs.NodeReaddirer)((*dirNode)(nil))
var _ = (fs.NodeLookuper)((*dirNode)(nil))
var _ = (fs.NodeMkdirer)((*dirNode)(nil))
var _ = (fs.NodeRmdirer)((*dirNode)(nil))
var _ = (fs.NodeUnlinker)((*dirNode)(nil))
var _ = (fs.NodeRenamer)((*dirNode)(nil))
var _ = (fs.NodeCreater)((*dirNode)(nil))
var _ = (fs.NodeGetattrer)((*dirNode)(nil))
var _ = (fs.NodeGetxattrer)((*dirNode)(nil))
var _ = (fs.NodeSetxattrer)((*dirNode)(nil))
var _ = (fs.NodeListxattrer)((*dirNode)(nil))
var _ = (fs.NodeStatfser)((*dirNode)(nil))
var _ = (fs.NodeSetattrer)((*dirNode)(nil))

func childMode(n *docmodel.Node) uint32 {
	if n.IsCollection() {
		return fuse.S_IFDIR
	}
	return fuse.S_IFREG
}

// newChildInode wraps a docmodel.Node as the right kind of FUSE inode and
// registers it under parent.
func newChildInode(ctx context.Context, parent *fs.Inode, n *docmodel.Node) *fs.Inode {
	if n.IsCollection() {
		return parent.NewInode(ctx, &dirNode{node: n}, fs.StableAttr{Mode: fuse.S_IFDIR})
	}
	return parent.NewInode(ctx, &fileNode{node: n}, fs.StableAttr{Mode: fuse.S_IFREG})
}

func (d *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children := d.node.Children()
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		entries = append(entries, fuse.DirEntry{Name: c.Name(), Mode: childMode(c)})
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (d *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, err := d.node.Get(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	return newChildInode(ctx, &d.Inode, child), fs.OK
}

func (d *dirNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, err := d.node.NewCollection(name)
	if err != nil {
		log.Printf("[fusefs] Mkdir %s: %v", name, err)
		return nil, errno(err)
	}
	return newChildInode(ctx, &d.Inode, child), fs.OK
}

func (d *dirNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	child, err := d.node.Get(name)
	if err != nil {
		return syscall.ENOENT
	}
	if !child.IsCollection() {
		return syscall.ENOTDIR
	}
	if !child.Empty() {
		return syscall.ENOTEMPTY
	}
	if err := child.Delete(); err != nil {
		return errno(err)
	}
	return fs.OK
}

func (d *dirNode) Unlink(ctx context.Context, name string) syscall.Errno {
	child, err := d.node.Get(name)
	if err != nil {
		return syscall.ENOENT
	}
	if child.IsCollection() {
		return syscall.EISDIR
	}
	if err := child.Delete(); err != nil {
		return errno(err)
	}
	return fs.OK
}

// Rename implements §4.5's three destination cases: a free name is a plain
// rename/move; an existing collection receives the source as a child under
// its own name (mirroring "mv into a directory"); an existing file refuses
// with EEXIST rather than risk silently discarding tablet state.
func (d *dirNode) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	child, err := d.node.Get(name)
	if err != nil {
		return syscall.ENOENT
	}
	destDir, ok := newParent.(*dirNode)
	if !ok {
		return syscall.EINVAL
	}
	if existing, err := destDir.node.Get(newName); err == nil && existing != child {
		if existing.IsCollection() {
			if inner, err := existing.Get(child.Name()); err == nil && inner != child {
				return syscall.EEXIST
			}
			if err := child.Rename(existing, child.Name()); err != nil {
				return errno(err)
			}
			return fs.OK
		}
		return syscall.EEXIST
	}
	if err := child.Rename(destDir.node, newName); err != nil {
		return errno(err)
	}
	return fs.OK
}

// Create buffers a new upload: nothing is persisted until Flush/Release
// calls Save on the resulting PendingDocument (§4.4's ordered pipeline).
func (d *dirNode) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	pending, err := d.node.NewDocument(name)
	if err != nil {
		return nil, nil, 0, errno(err)
	}
	node := &pendingFileNode{parent: d.node, doc: pending}
	inode := d.NewInode(ctx, node, fs.StableAttr{Mode: fuse.S_IFREG})
	return inode, nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (d *dirNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFDIR | 0755
	out.Mtime = uint64(d.node.LastModified() / 1000)
	return fs.OK
}

// Setattr silently accepts chmod/chown/utimens (§4.5: tools like cp -p and
// touch must not fail, even though none of these attributes are actually
// stored) and reports the synthesized attributes back unchanged.
func (d *dirNode) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	return d.Getattr(ctx, f, out)
}

func (d *dirNode) Getxattr(ctx context.Context, attr string, dest []byte) (uint32, syscall.Errno) {
	return getxattr(d.node, attr, dest)
}

func (d *dirNode) Setxattr(ctx context.Context, attr string, data []byte, flags uint32) syscall.Errno {
	return setxattr(d.node, attr, data)
}

func (d *dirNode) Listxattr(ctx context.Context, dest []byte) (uint32, syscall.Errno) {
	return listxattr(dest)
}
