package docmodel

import "strconv"

// NodeKind is the closed set of node variants: a tagged union in place of
// dispatch-by-type-string, per the design notes. An unrecognised metadata
// "type" value degrades to NodeOpaque — registered for parent-linking
// purposes but never listed.
type NodeKind int

const (
	NodeCollection NodeKind = iota
	NodeDocument
	NodeOpaque
)

// Node is an in-memory document-tree entry. Every field outside the
// Collection/Document-specific blocks applies to all kinds; parent/child
// relationships are expressed purely by id, never by Go pointer, so the
// registry in Tree is the sole owner.
type Node struct {
	tree *Tree
	id   string
	kind NodeKind

	meta    Metadata
	content Content
	dirty   bool // needs a metadata write on next Save()

	// filename is the node's current display name in its parent, including
	// extension. The root's is the synthetic "ROOT" and is never looked up
	// by a parent (the root has none).
	filename string

	// Collection-only: ordered child ids, and the two name maps required by
	// I3/I4 (unique display name per parent, and its inverse for rename).
	childOrder []string
	childByName map[string]string
	nameByChild map[string]string

	// Document-only.
	fileType string // resolved at load: content.FileType if non-empty, else "lines"
	size     int64
	rendered []byte // memoized rendered PDF bytes for a lines-type document
}

// ID returns the node's identifier; the root's is the empty string.
func (n *Node) ID() string { return n.id }

// Kind returns the node's variant.
func (n *Node) Kind() NodeKind { return n.kind }

// Name returns the node's current display filename within its parent.
func (n *Node) Name() string { return n.filename }

// ParentID returns the id of the node's parent collection.
func (n *Node) ParentID() string { return n.meta.Parent }

// Pinned reports the node's bookmark state.
func (n *Node) Pinned() bool { return n.meta.Pinned }

// Deleted reports whether the node is tombstoned.
func (n *Node) Deleted() bool { return n.meta.Deleted }

// LastModified returns the node's last-modified time, derived from the
// persisted milliseconds-since-epoch field.
func (n *Node) LastModified() int64 {
	return parseMillis(n.meta.LastModified)
}

// Size returns the node's content size as known at load time (or, for a
// lines-type document, after first materialization).
func (n *Node) Size() int64 { return n.size }

// IsCollection reports whether the node behaves as a directory.
func (n *Node) IsCollection() bool { return n.kind == NodeCollection }

// mutate is the single metadata-mutation entrypoint: every caller that
// changes a persisted field must route through here so I6 holds
// (version++, synced=false, metadatamodified=true) in exactly one place.
func (n *Node) mutate(fn func(*Metadata)) {
	fn(&n.meta)
	n.meta.Version++
	n.meta.Synced = false
	n.meta.MetadataModified = true
	n.meta.LastModified = nowMillis()
	n.dirty = true
}

func parseMillis(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
