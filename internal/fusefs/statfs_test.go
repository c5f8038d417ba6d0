package fusefs

import (
	"testing"

	"github.com/hanwen/go-fuse/v2/fuse"
)

func TestDoStatfsReportsSynthesizedCapacity(t *testing.T) {
	t.Parallel()
	var out fuse.StatfsOut
	if errno := doStatfs(&out); errno != 0 {
		t.Fatalf("doStatfs() errno = %v", errno)
	}
	if out.Bsize != blockSize {
		t.Errorf("Bsize = %d, want %d", out.Bsize, blockSize)
	}
	if got := out.Blocks * uint64(out.Bsize); got != totalBytes {
		t.Errorf("Blocks*Bsize = %d, want %d", got, uint64(totalBytes))
	}
	if out.Bfree != out.Blocks || out.Bavail != out.Blocks {
		t.Errorf("Bfree/Bavail = %d/%d, want both = Blocks (%d)", out.Bfree, out.Bavail, out.Blocks)
	}
}
