package docmodel

import (
	"bytes"
	"strings"

	"github.com/nick8325/remarkable-fs/internal/strokes"
)

// Read serves a byte range from a persisted Document. A "lines"-type
// notebook is materialized to PDF on first read (memoized for the rest of
// the session); "pdf" and "epub" documents are served directly from the
// transport.
func (n *Node) Read(off, length int64) ([]byte, error) {
	if n.kind != NodeDocument {
		return nil, newErr(KindIsADirectory, "Read", nil)
	}

	if n.fileType == "lines" {
		if err := n.materialize(); err != nil {
			return nil, err
		}
		return sliceBytes(n.rendered, off, length), nil
	}

	data, err := n.tree.transport.ReadRange(n.id+"."+n.fileType, off, length)
	if err != nil {
		return nil, newErr(KindIO, "Read", err)
	}
	return data, nil
}

// materialize renders the notebook's .lines data to PDF once, caching the
// result on the node. Re-entrancy is safe under the single-threaded
// dispatch model the filesystem adapter guarantees: a read during a read
// cannot happen.
func (n *Node) materialize() error {
	if n.rendered != nil {
		return nil
	}

	data, err := n.tree.transport.ReadAll(n.id + ".lines")
	if err != nil {
		return newErr(KindIO, "materialize", err)
	}
	doc, err := strokes.Decode(data)
	if err != nil {
		return newErr(KindMalformedLines, "materialize", err)
	}

	templatePaths, err := n.resolveTemplates(len(doc.Pages))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := strokes.Render(doc, templatePaths, &buf); err != nil {
		return newErr(KindIO, "materialize", err)
	}

	n.rendered = buf.Bytes()
	n.size = int64(len(n.rendered))
	return nil
}

// resolveTemplates reads the .pagedata sibling (one template name per
// line, "Blank" meaning none) and resolves each through the template
// cache. A missing .pagedata is tolerated as "no templates at all" — some
// notebooks have none.
func (n *Node) resolveTemplates(npages int) ([]string, error) {
	raw, err := n.tree.transport.ReadAll(n.id + ".pagedata")
	if err != nil {
		return make([]string, npages), nil
	}

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	paths := make([]string, npages)
	for i := 0; i < npages && i < len(lines); i++ {
		path, err := n.tree.templates.Resolve(strings.TrimSpace(lines[i]))
		if err != nil {
			return nil, newErr(KindIO, "resolveTemplates", err)
		}
		paths[i] = path
	}
	return paths, nil
}

func sliceBytes(data []byte, off, length int64) []byte {
	if off >= int64(len(data)) {
		return nil
	}
	end := off + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}
