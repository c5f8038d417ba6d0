package transport

import (
	"io"
	"os"
	"path/filepath"
)

// LocalDirTransport implements Transport over an ordinary local directory.
// It backs the CLI's optional second positional argument (§6 CLI) for
// offline inspection of a copied-down document set.
type LocalDirTransport struct {
	root string
}

func NewLocalDirTransport(root string) *LocalDirTransport {
	return &LocalDirTransport{root: root}
}

func (t *LocalDirTransport) path(name string) string {
	return filepath.Join(t.root, name)
}

func (t *LocalDirTransport) List() ([]string, error) {
	entries, err := os.ReadDir(t.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (t *LocalDirTransport) ReadAll(name string) ([]byte, error) {
	data, err := os.ReadFile(t.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (t *LocalDirTransport) ReadRange(name string, offset, length int64) ([]byte, error) {
	f, err := os.Open(t.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

func (t *LocalDirTransport) Stat(name string) (Info, error) {
	fi, err := os.Stat(t.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, ErrNotFound
		}
		return Info{}, err
	}
	return Info{
		Name:  name,
		Size:  fi.Size(),
		Mtime: fi.ModTime(),
		Atime: fi.ModTime(),
	}, nil
}

func (t *LocalDirTransport) Write(name string, r io.Reader) error {
	tmp := t.path(name) + ".tmp-upload"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, t.path(name))
}

func (t *LocalDirTransport) Unlink(name string) error {
	if err := os.Remove(t.path(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (t *LocalDirTransport) Close() error { return nil }
