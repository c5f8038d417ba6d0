package docmodel

import (
	"strings"
)

// PendingDocument is an in-flight upload: a byte buffer under a provisional
// display filename, held between create() and release(). Nothing is
// written to the transport until Save succeeds; the tree only gains a
// Node for it at that point.
type PendingDocument struct {
	tree     *Tree
	parent   *Node
	id       string
	filename string

	buf     []byte
	deleted bool // set once Save has failed and self-deleted; further Saves are no-ops
}

// ID returns the provisional document's allocated id.
func (p *PendingDocument) ID() string { return p.id }

// Name returns the provisional display filename given at create time.
func (p *PendingDocument) Name() string { return p.filename }

// Size returns the current buffered length.
func (p *PendingDocument) Size() int64 { return int64(len(p.buf)) }

// Write buffers data at off, growing the buffer as needed. Only
// PendingDocuments accept writes; persisted Documents reject them at the
// adapter boundary.
func (p *PendingDocument) Write(off int64, data []byte) (int, error) {
	end := off + int64(len(data))
	if end > int64(len(p.buf)) {
		grown := make([]byte, end)
		copy(grown, p.buf)
		p.buf = grown
	}
	copy(p.buf[off:], data)
	return len(data), nil
}

// Read serves a slice of the buffered upload (used for read-after-write on
// an open handle, before release).
func (p *PendingDocument) Read(off, length int64) ([]byte, error) {
	if off >= int64(len(p.buf)) {
		return nil, nil
	}
	end := off + length
	if end > int64(len(p.buf)) {
		end = int64(len(p.buf))
	}
	return p.buf[off:end], nil
}

// Truncate resizes the buffer to size.
func (p *PendingDocument) Truncate(size int64) error {
	switch {
	case size == int64(len(p.buf)):
		// no-op
	case size < int64(len(p.buf)):
		p.buf = p.buf[:size]
	default:
		grown := make([]byte, size)
		copy(grown, p.buf)
		p.buf = grown
	}
	return nil
}

// Save runs the upload pipeline: temporary-file and empty-write tolerance,
// then magic-byte format detection, conversion, and the ordered
// content-then-payload-then-metadata writes. On success it returns the
// newly persisted Node, now linked into the tree. On the
// temporary-file/empty-write tolerance paths it returns (nil, nil): the
// upload is silently discarded, which is not an error the caller should
// report.
func (p *PendingDocument) Save() (*Node, error) {
	if p.deleted {
		return nil, nil
	}
	if strings.HasPrefix(p.filename, ".") {
		return nil, nil
	}
	if len(p.buf) == 0 {
		return nil, nil
	}

	df, err := detectFormat(p.buf, p.tree.djvu, p.tree.ps)
	if err != nil {
		p.deleted = true
		return nil, err
	}

	data, err := convertToFile(df, p.buf)
	if err != nil {
		p.deleted = true
		return nil, err
	}

	n := &Node{
		tree:     p.tree,
		id:       p.id,
		kind:     NodeDocument,
		filename: p.filename,
		fileType: df.fileType,
		content:  Content{FileType: df.fileType},
		size:     int64(len(data)),
	}
	n.meta = Metadata{
		VisibleName:  stripKnownExtension(p.filename),
		Parent:       p.parent.id,
		Type:         TypeDocument,
		Modified:     false,
		Synced:       true,
		LastModified: nowMillis(),
		Version:      1,
	}

	if err := p.tree.writeContent(n); err != nil {
		return nil, err
	}
	if err := writeTransport(p.tree, n.id+"."+df.fileType, data); err != nil {
		return nil, err
	}
	n.dirty = false
	if err := p.tree.writeMetadata(n); err != nil {
		return nil, err
	}

	p.tree.nodes[n.id] = n
	insertChild(p.parent, n)

	return n, nil
}
