package fusefs

import (
	"context"
	"log"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/nick8325/remarkable-fs/internal/docmodel"
)

// pendingFileNode is the FUSE file seen while an upload is being buffered:
// between Create and the handle's release, all reads and writes hit the
// in-memory buffer, and nothing reaches the device until Save succeeds.
type pendingFileNode struct {
	fs.Inode
	parent *docmodel.Node
	doc    *docmodel.PendingDocument

	// saved is set once Save has run (on Flush), so a later Read/Getattr on
	// the same still-open handle serves the persisted node rather than the
	// stale pre-conversion buffer.
	saved *docmodel.Node
}

var _ = (fs.NodeOpener)((*pendingFileNode)(nil))
var _ = (fs.NodeReader)((*pendingFileNode)(nil))
var _ = (fs.NodeWriter)((*pendingFileNode)(nil))
var _ = (fs.NodeFlusher)((*pendingFileNode)(nil))
var _ = (fs.NodeGetattrer)((*pendingFileNode)(nil))
var _ = (fs.NodeSetattrer)((*pendingFileNode)(nil))
var _ = (fs.NodeStatfser)((*pendingFileNode)(nil))

func (p *pendingFileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	return nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (p *pendingFileNode) Write(ctx context.Context, fh fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	if p.saved != nil {
		return 0, syscall.EROFS
	}
	n, err := p.doc.Write(off, data)
	if err != nil {
		return 0, errno(err)
	}
	return uint32(n), fs.OK
}

func (p *pendingFileNode) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if p.saved != nil {
		data, err := p.saved.Read(off, int64(len(dest)))
		if err != nil {
			return nil, errno(err)
		}
		return fuse.ReadResultData(data), fs.OK
	}
	data, err := p.doc.Read(off, int64(len(dest)))
	if err != nil {
		return nil, errno(err)
	}
	return fuse.ReadResultData(data), fs.OK
}

// Flush runs the upload pipeline (§4.4: content, then payload, then
// metadata, in that order) the first time the handle is flushed. Once a
// Save has succeeded, later flushes on the same handle return early on the
// saved node; after a failed Save, a repeat Save is a no-op because of its
// own self-deletion guard.
func (p *pendingFileNode) Flush(ctx context.Context, fh fs.FileHandle) syscall.Errno {
	if p.saved != nil {
		return fs.OK
	}
	n, err := p.doc.Save()
	if err != nil {
		log.Printf("[fusefs] upload %s failed: %v", p.doc.Name(), err)
		return errno(err)
	}
	p.saved = n
	return fs.OK
}

func (p *pendingFileNode) Setattr(ctx context.Context, fh fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if size, ok := in.GetSize(); ok && p.saved == nil {
		if err := p.doc.Truncate(int64(size)); err != nil {
			return errno(err)
		}
	}
	return p.Getattr(ctx, fh, out)
}

func (p *pendingFileNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFREG | 0644
	if p.saved != nil {
		out.Size = uint64(p.saved.Size())
	} else {
		out.Size = uint64(p.doc.Size())
	}
	return fs.OK
}
