package fusefs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/nick8325/remarkable-fs/internal/docmodel"
)

// fileNode is a FUSE regular file backed by an already-persisted document
// docmodel.Node. It is read-only: mutation goes through Create/Write on a
// pendingFileNode instead, never through reopening an existing document for
// writing (§4.3's convert-on-save model has no notion of an in-place edit).
type fileNode struct {
	fs.Inode
	node *docmodel.Node
}

var _ = (fs.NodeOpener)((*fileNode)(nil))
var _ = (fs.NodeReader)((*fileNode)(nil))
var _ = (fs.NodeGetattrer)((*fileNode)(nil))
var _ = (fs.NodeGetxattrer)((*fileNode)(nil))
var _ = (fs.NodeSetxattrer)((*fileNode)(nil))
var _ = (fs.NodeListxattrer)((*fileNode)(nil))
var _ = (fs.NodeStatfser)((*fileNode)(nil))
var _ = (fs.NodeSetattrer)((*fileNode)(nil))

func (f *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EPERM
	}
	return nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (f *fileNode) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := f.node.Read(off, int64(len(dest)))
	if err != nil {
		return nil, errno(err)
	}
	return fuse.ReadResultData(data), fs.OK
}

func (f *fileNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFREG | 0644
	out.Size = uint64(f.node.Size())
	out.Mtime = uint64(f.node.LastModified() / 1000)
	return fs.OK
}

// Setattr silently accepts chmod/chown/utimens; a persisted document's
// content can't be truncated in place (there is no in-place edit, only
// convert-on-save through a pendingFileNode), so a size change is ignored
// the same way.
func (f *fileNode) Setattr(ctx context.Context, fh fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	return f.Getattr(ctx, fh, out)
}

func (f *fileNode) Getxattr(ctx context.Context, attr string, dest []byte) (uint32, syscall.Errno) {
	return getxattr(f.node, attr, dest)
}

func (f *fileNode) Setxattr(ctx context.Context, attr string, data []byte, flags uint32) syscall.Errno {
	return setxattr(f.node, attr, data)
}

func (f *fileNode) Listxattr(ctx context.Context, dest []byte) (uint32, syscall.Errno) {
	return listxattr(dest)
}
