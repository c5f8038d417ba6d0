package docmodel

import (
	"bytes"
	"fmt"
)

// Get returns the child of a collection node with the given display name.
func (n *Node) Get(name string) (*Node, error) {
	if n.kind != NodeCollection {
		return nil, newErr(KindNotADirectory, "Get", nil)
	}
	id, ok := n.childByName[name]
	if !ok {
		return nil, newErr(KindNotFound, "Get", nil)
	}
	return n.tree.nodes[id], nil
}

// Children returns the collection's visible children in insertion order.
// Opaque nodes are registered for linking purposes but never listed here.
func (n *Node) Children() []*Node {
	if n.kind != NodeCollection {
		return nil
	}
	out := make([]*Node, 0, len(n.childOrder))
	for _, id := range n.childOrder {
		c := n.tree.nodes[id]
		if c.kind == NodeOpaque {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Empty reports whether a collection has no visible children, used by
// rmdir's not-empty check.
func (n *Node) Empty() bool {
	return len(n.Children()) == 0
}

// NewCollection creates a folder under n: allocates an id, writes metadata
// and an empty content file, then links it into the tree.
func (n *Node) NewCollection(name string) (*Node, error) {
	if n.kind != NodeCollection {
		return nil, newErr(KindNotADirectory, "NewCollection", nil)
	}
	if _, ok := n.childByName[name]; ok {
		return nil, newErr(KindAlreadyExists, "NewCollection", nil)
	}

	id := n.tree.newID()
	child := &Node{
		tree:        n.tree,
		id:          id,
		kind:        NodeCollection,
		filename:    name,
		childByName: make(map[string]string),
		nameByChild: make(map[string]string),
	}
	child.meta = Metadata{
		VisibleName:  name,
		Parent:       n.id,
		Type:         TypeCollection,
		LastModified: nowMillis(),
		Version:      1,
	}

	if err := n.tree.writeContent(child); err != nil {
		return nil, err
	}
	if err := n.tree.writeMetadata(child); err != nil {
		return nil, err
	}

	n.tree.nodes[id] = child
	insertChild(n, child)
	return child, nil
}

// NewDocument allocates an id and returns a PendingDocument buffering an
// in-flight upload; nothing is persisted until Save.
func (n *Node) NewDocument(name string) (*PendingDocument, error) {
	if n.kind != NodeCollection {
		return nil, newErr(KindNotADirectory, "NewDocument", nil)
	}
	if _, ok := n.childByName[name]; ok {
		return nil, newErr(KindAlreadyExists, "NewDocument", nil)
	}

	return &PendingDocument{
		tree:     n.tree,
		id:       n.tree.newID(),
		parent:   n,
		filename: name,
	}, nil
}

// Rename moves n to be a child of newParent under newName, updating
// visibleName per the extension-stripping policy, and persists.
func (n *Node) Rename(newParent *Node, newName string) error {
	if newParent.kind != NodeCollection {
		return newErr(KindNotADirectory, "Rename", nil)
	}
	oldParent, err := n.tree.FindNode(n.meta.Parent)
	if err != nil {
		return newErr(KindParentMissing, "Rename", err)
	}

	removeChild(oldParent, n)

	visibleName := stripKnownExtension(newName)
	n.mutate(func(m *Metadata) {
		m.VisibleName = visibleName
		m.Parent = newParent.id
	})
	n.filename = newName

	insertChild(newParent, n)

	return n.tree.writeMetadata(n)
}

// Delete removes n from its parent's listing and tombstones it.
func (n *Node) Delete() error {
	parent, err := n.tree.FindNode(n.meta.Parent)
	if err != nil {
		return newErr(KindParentMissing, "Delete", err)
	}
	removeChild(parent, n)
	n.mutate(func(m *Metadata) {
		m.Deleted = true
	})
	return n.tree.writeMetadata(n)
}

// SetPinned flips the bookmark flag and persists immediately, matching the
// setxattr("user.bookmarked", ...) contract (S6): the caller sees the
// change take effect atomically, not deferred to a later Save.
func (n *Node) SetPinned(pinned bool) error {
	if n.meta.Pinned == pinned {
		return nil
	}
	n.mutate(func(m *Metadata) {
		m.Pinned = pinned
	})
	return n.tree.writeMetadata(n)
}

// Save persists n's metadata iff it has pending changes (P6: calling Save
// twice in a row performs exactly one write).
func (n *Node) Save() error {
	if !n.dirty {
		return nil
	}
	return n.tree.writeMetadata(n)
}

func (t *Tree) writeMetadata(n *Node) error {
	if err := writeTransport(t, n.id+".metadata", n.meta.encode()); err != nil {
		return err
	}
	n.dirty = false
	n.meta.Synced = true
	return nil
}

func (t *Tree) writeContent(n *Node) error {
	return writeTransport(t, n.id+".content", n.content.encode())
}

func writeTransport(t *Tree, name string, data []byte) error {
	if err := t.transport.Write(name, bytes.NewReader(data)); err != nil {
		return newErr(KindIO, fmt.Sprintf("write %s", name), err)
	}
	return nil
}
