package transport

import (
	"bytes"
	"io"
	"sort"
	"sync"
	"time"
)

// Fake is an in-memory Transport for tests, the same role the teacher's
// MockRepository plays for its repo.Repository interface: callers seed it
// directly via Put rather than going through Write.
type Fake struct {
	mu    sync.Mutex
	files map[string][]byte
	mtime map[string]time.Time
}

func NewFake() *Fake {
	return &Fake{
		files: make(map[string][]byte),
		mtime: make(map[string]time.Time),
	}
}

// Put seeds name with data and a fixed modification time, for test setup.
func (f *Fake) Put(name string, data []byte, mtime time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = append([]byte(nil), data...)
	f.mtime[name] = mtime
}

func (f *Fake) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fake) ReadAll(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (f *Fake) ReadRange(name string, offset, length int64) ([]byte, error) {
	data, err := f.ReadAll(name)
	if err != nil {
		return nil, err
	}
	if offset >= int64(len(data)) {
		return nil, nil
	}
	end := offset + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end], nil
}

func (f *Fake) Stat(name string) (Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[name]
	if !ok {
		return Info{}, ErrNotFound
	}
	mt := f.mtime[name]
	return Info{Name: name, Size: int64(len(data)), Mtime: mt, Atime: mt}, nil
}

func (f *Fake) Write(name string, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = buf.Bytes()
	f.mtime[name] = time.Now()
	return nil
}

func (f *Fake) Unlink(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	delete(f.mtime, name)
	return nil
}

func (f *Fake) Close() error { return nil }

var _ Transport = (*Fake)(nil)
