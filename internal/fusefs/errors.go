package fusefs

import (
	"syscall"

	"github.com/nick8325/remarkable-fs/internal/docmodel"
)

// errno translates a docmodel error to the POSIX errno the kernel expects,
// the one place in this package that knows about that mapping (mirrors §7
// of the design: error kinds are realized once, at the adapter boundary).
func errno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	switch docmodel.KindOf(err) {
	case docmodel.KindNotFound, docmodel.KindParentMissing:
		return syscall.ENOENT
	case docmodel.KindAlreadyExists:
		return syscall.EEXIST
	case docmodel.KindNotADirectory:
		return syscall.ENOTDIR
	case docmodel.KindIsADirectory:
		return syscall.EISDIR
	case docmodel.KindNotEmpty:
		return syscall.ENOTEMPTY
	case docmodel.KindNotPermitted:
		return syscall.EPERM
	case docmodel.KindNotSupported:
		return syscall.ENOSYS
	case docmodel.KindBusy:
		return syscall.EBUSY
	default:
		return syscall.EIO
	}
}
