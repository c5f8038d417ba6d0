package fusefs

import (
	"strings"
	"syscall"

	"github.com/nick8325/remarkable-fs/internal/docmodel"
)

// bookmarkedAttr is the only extended attribute this filesystem exposes:
// it surfaces the device's own "starred/pinned" flag.
const bookmarkedAttr = "user.bookmarked"

func getxattr(n *docmodel.Node, attr string, dest []byte) (uint32, syscall.Errno) {
	if attr != bookmarkedAttr {
		return 0, syscall.ENODATA
	}
	value := "no"
	if n.Pinned() {
		value = "yes"
	}
	if len(dest) < len(value) {
		return uint32(len(value)), syscall.ERANGE
	}
	copy(dest, value)
	return uint32(len(value)), 0
}

func setxattr(n *docmodel.Node, attr string, data []byte) syscall.Errno {
	if attr != bookmarkedAttr {
		return syscall.ENODATA
	}
	pinned, ok := parseBool(string(data))
	if !ok {
		return syscall.EINVAL
	}
	if err := n.SetPinned(pinned); err != nil {
		return errno(err)
	}
	return 0
}

// parseBool accepts the token forms §4.5 documents for user.bookmarked:
// "yes"/"true"/"1" for true, "no"/"false"/"0" for false, case-insensitive.
// Anything else is rejected rather than silently treated as false.
func parseBool(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, true
	case "no", "false", "0":
		return false, true
	default:
		return false, false
	}
}

func listxattr(dest []byte) (uint32, syscall.Errno) {
	name := bookmarkedAttr + "\x00"
	if len(dest) < len(name) {
		return uint32(len(name)), syscall.ERANGE
	}
	copy(dest, name)
	return uint32(len(name)), 0
}
