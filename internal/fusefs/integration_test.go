package fusefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nick8325/remarkable-fs/internal/docmodel"
	"github.com/nick8325/remarkable-fs/internal/templates"
	"github.com/nick8325/remarkable-fs/internal/transport"
)

func mountTestFS(t *testing.T) (string, *docmodel.Tree) {
	t.Helper()
	fake := transport.NewFake()
	tc := templates.New(fake, t.TempDir())
	tree := docmodel.NewTree(fake, tc,
		docmodel.WithConverters(identityConverter{}, identityConverter{}))

	mountpoint := t.TempDir()
	server, err := New(tree, Options{}).Mount(mountpoint)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(func() {
		server.Unmount()
		server.Wait()
	})
	return mountpoint, tree
}

// identityConverter stands in for ddjvu/ps2pdf in tests that never upload
// anything but a PDF, so it is never actually invoked.
type identityConverter struct{}

func (identityConverter) Convert(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

func TestMountMkdirReaddirRmdir(t *testing.T) {
	t.Parallel()
	mountpoint, _ := mountTestFS(t)

	dir := filepath.Join(mountpoint, "Work")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Work" {
		t.Fatalf("ReadDir() = %v, want [Work]", entries)
	}

	if err := os.Remove(dir); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	entries, err = os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("ReadDir() after Rmdir = %v, want empty", entries)
	}
}

func TestMountUploadPdfThenReadBack(t *testing.T) {
	t.Parallel()
	mountpoint, _ := mountTestFS(t)

	pdf := append([]byte("%PDF-1.4\n"), []byte("rest of the file")...)
	path := filepath.Join(mountpoint, "Notes.pdf")
	if err := os.WriteFile(path, pdf, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	entries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Notes.pdf" {
		t.Fatalf("ReadDir() = %v, want [Notes.pdf]", entries)
	}

	got, err := os.ReadFile(filepath.Join(mountpoint, "Notes.pdf"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != string(pdf) {
		t.Errorf("ReadFile() = %q, want %q", got, pdf)
	}
}

func TestMountUploadUnsupportedFormatVanishes(t *testing.T) {
	t.Parallel()
	mountpoint, _ := mountTestFS(t)

	// detectFormat fails on close (Flush runs Save), so WriteFile itself is
	// expected to return the close error here.
	path := filepath.Join(mountpoint, "Mystery")
	_ = os.WriteFile(path, []byte("not a known format at all"), 0644)

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Stat(%q) succeeded, want the failed upload to be gone", path)
	}
}

func TestMountRenameRejectsExistingFileDestination(t *testing.T) {
	t.Parallel()
	mountpoint, _ := mountTestFS(t)

	pdf := append([]byte("%PDF-1.4\n"), []byte("rest")...)
	for _, name := range []string{"A.pdf", "B.pdf"} {
		if err := os.WriteFile(filepath.Join(mountpoint, name), pdf, 0644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}

	err := os.Rename(filepath.Join(mountpoint, "A.pdf"), filepath.Join(mountpoint, "B.pdf"))
	if err == nil {
		t.Fatal("Rename() onto an existing file succeeded, want an error")
	}
}

// A rename whose destination is an existing collection moves the source
// into it under the source's own name, rather than failing with EEXIST.
func TestMountRenameOntoCollectionMovesInside(t *testing.T) {
	t.Parallel()
	mountpoint, _ := mountTestFS(t)

	for _, name := range []string{"A", "B"} {
		if err := os.Mkdir(filepath.Join(mountpoint, name), 0755); err != nil {
			t.Fatalf("Mkdir(%s) error = %v", name, err)
		}
	}

	if err := os.Rename(filepath.Join(mountpoint, "A"), filepath.Join(mountpoint, "B")); err != nil {
		t.Fatalf("Rename() onto a collection returned error = %v", err)
	}

	rootEntries, err := os.ReadDir(mountpoint)
	if err != nil {
		t.Fatalf("ReadDir(root) error = %v", err)
	}
	if len(rootEntries) != 1 || rootEntries[0].Name() != "B" {
		t.Fatalf("ReadDir(root) = %v, want only [B]", rootEntries)
	}

	bEntries, err := os.ReadDir(filepath.Join(mountpoint, "B"))
	if err != nil {
		t.Fatalf("ReadDir(B) error = %v", err)
	}
	if len(bEntries) != 1 || bEntries[0].Name() != "A" {
		t.Fatalf("ReadDir(B) = %v, want [A]", bEntries)
	}
}

func TestMountGetxattrBookmarked(t *testing.T) {
	t.Parallel()
	mountpoint, tree := mountTestFS(t)

	if err := os.Mkdir(filepath.Join(mountpoint, "Work"), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	child, err := tree.Root().Get("Work")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := child.SetPinned(true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}

	dest := make([]byte, 16)
	n, errno := getxattr(child, bookmarkedAttr, dest)
	if errno != 0 {
		t.Fatalf("getxattr() errno = %v", errno)
	}
	if string(dest[:n]) != "yes" {
		t.Errorf("getxattr() = %q, want %q", dest[:n], "yes")
	}
}
