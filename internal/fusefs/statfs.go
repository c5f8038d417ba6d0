package fusefs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// totalBytes is the synthesized filesystem capacity §4.5 calls for: the
// tablet's model-agnostic nominal storage size, not a real block device, so
// df/Finder see a plausible number rather than zeros.
const (
	totalBytes = 8 << 30 // 8 GiB
	blockSize  = 4096
)

// doStatfs fills out with a synthesized, always-"unused" 8 GiB volume. Every
// node shares this one synthesis since there is no real block device behind
// the mount to report on.
func doStatfs(out *fuse.StatfsOut) syscall.Errno {
	blocks := uint64(totalBytes / blockSize)
	out.Bsize = blockSize
	out.Frsize = blockSize
	out.Blocks = blocks
	out.Bfree = blocks
	out.Bavail = blocks
	out.Files = 1 << 20
	out.Ffree = 1 << 20
	out.NameLen = 255
	return 0
}

func (d *dirNode) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	return doStatfs(out)
}

func (f *fileNode) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	return doStatfs(out)
}

func (p *pendingFileNode) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	return doStatfs(out)
}
