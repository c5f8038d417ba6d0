package docmodel

import (
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nick8325/remarkable-fs/internal/templates"
	"github.com/nick8325/remarkable-fs/internal/transport"
)

// Tree is the document model: a process-wide registry of nodes keyed by
// id, owned by the synthetic root, reconstructed from one scan of the
// transport. There is deliberately no mutex here — the filesystem adapter
// mounts single-threaded (§5 of the design), so every Tree method is
// called serially and no node, map, or handle needs its own lock.
type Tree struct {
	transport transport.Transport
	templates *templates.Cache
	newID     func() string
	djvu, ps  Converter

	nodes map[string]*Node
	root  *Node
}

// Option configures a Tree at construction time.
type Option func(*Tree)

// WithConverters overrides the DJVU/PS external converters used by upload
// conversion; the defaults shell out to ddjvu and ps2pdf.
func WithConverters(djvu, ps Converter) Option {
	return func(t *Tree) {
		t.djvu = djvu
		t.ps = ps
	}
}

// NewTree constructs an empty Tree (just the synthetic root); call Load to
// populate it from the transport.
func NewTree(tr transport.Transport, tc *templates.Cache, opts ...Option) *Tree {
	t := &Tree{
		transport: tr,
		templates: tc,
		newID:     uuid.NewString,
		djvu:      ExecConverter{Name: "ddjvu", Args: []string{"--format=pdf", "%src%", "%dst%"}},
		ps:        ExecConverter{Name: "ps2pdf", Args: []string{"%src%", "%dst%"}},
		nodes:     make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(t)
	}

	root := &Node{
		tree:        t,
		id:          "",
		kind:        NodeCollection,
		filename:    "ROOT",
		childByName: make(map[string]string),
		nameByChild: make(map[string]string),
	}
	root.meta.Type = TypeCollection
	t.root = root
	t.nodes[""] = root
	return t
}

// Root returns the synthetic root collection.
func (t *Tree) Root() *Node { return t.root }

// FindNode looks up a node by id; the empty id resolves to the root.
func (t *Tree) FindNode(id string) (*Node, error) {
	if id == "" {
		return t.root, nil
	}
	n, ok := t.nodes[id]
	if !ok {
		return nil, newErr(KindNotFound, "FindNode", nil)
	}
	return n, nil
}

// Load scans the transport for every *.metadata record, instantiates a
// node for each, then links every registered node to its parent in a
// second pass. Per-node errors are logged and that node is dropped;
// nothing aborts the overall scan.
func (t *Tree) Load() error {
	names, err := t.transport.List()
	if err != nil {
		return newErr(KindIO, "Load", err)
	}

	var ids []string
	for _, name := range names {
		if id, ok := strings.CutSuffix(name, ".metadata"); ok {
			ids = append(ids, id)
		}
	}
	// Sort for deterministic linking order (P3): disambiguation depends on
	// the order same-named siblings are inserted in.
	sort.Strings(ids)

	for _, id := range ids {
		if err := t.loadOne(id); err != nil {
			log.Printf("[docmodel] dropping node %s: %v", id, err)
		}
	}

	for _, id := range ids {
		n, ok := t.nodes[id]
		if !ok {
			continue // dropped during loadOne
		}
		if n.id == "" {
			continue
		}
		if err := t.linkLoaded(n); err != nil {
			log.Printf("[docmodel] dropping orphan node %s: %v", id, err)
			delete(t.nodes, id)
		}
	}
	return nil
}

func (t *Tree) loadOne(id string) error {
	raw, err := t.transport.ReadAll(id + ".metadata")
	if err != nil {
		return newErr(KindIO, "loadOne", err)
	}
	meta, err := decodeMetadata(raw)
	if err != nil {
		return err
	}
	if meta.Deleted {
		return nil // tolerated, not an error: simply not registered
	}

	n := &Node{tree: t, id: id, meta: meta}
	displayFileType := ""

	switch meta.Type {
	case TypeCollection:
		n.kind = NodeCollection
		n.childByName = make(map[string]string)
		n.nameByChild = make(map[string]string)
	case TypeDocument:
		n.kind = NodeDocument
		contentRaw, err := t.transport.ReadAll(id + ".content")
		if err != nil {
			return newErr(KindIO, "loadOne", err)
		}
		content, err := decodeContent(contentRaw)
		if err != nil {
			return err
		}
		n.content = content
		displayFileType = content.FileType
		n.fileType = content.FileType
		if n.fileType == "" {
			n.fileType = "lines"
		}

		info, err := t.transport.Stat(id + "." + n.fileType)
		if err != nil {
			// I7: a Document with no readable payload is invisible, to
			// tolerate partial state on the device — not an error.
			return nil
		}
		n.size = info.Size
	default:
		n.kind = NodeOpaque
	}

	// displayFileType is the raw content.FileType ("" for a handwritten
	// notebook), not n.fileType's "lines" resolution: extensionFor maps an
	// empty fileType to "pdf" since notebooks are presented as rendered
	// PDFs, while n.fileType keeps "lines" for the Read/materialize path.
	n.filename = displayName(meta.VisibleName, n.kind, displayFileType)
	t.nodes[id] = n
	return nil
}

// linkLoaded inserts an already-constructed node into its parent's child
// maps, computing the final disambiguated display name. Orphans (parent
// not found) are dropped by the caller.
func (t *Tree) linkLoaded(n *Node) error {
	parent, ok := t.nodes[n.meta.Parent]
	if !ok || parent.kind != NodeCollection {
		return newErr(KindParentMissing, "linkLoaded", nil)
	}
	insertChild(parent, n)
	return nil
}

// insertChild disambiguates n's filename against parent's existing
// children and records it in both of the parent's name maps and its
// ordered child list. It does not touch the transport.
func insertChild(parent *Node, n *Node) {
	name := disambiguate(parent.childByName, n.filename)
	n.filename = name
	parent.childByName[name] = n.id
	parent.nameByChild[n.id] = name
	parent.childOrder = append(parent.childOrder, n.id)
}

// removeChild detaches n from parent's child maps and ordered list.
func removeChild(parent *Node, n *Node) {
	name, ok := parent.nameByChild[n.id]
	if !ok {
		return
	}
	delete(parent.nameByChild, n.id)
	delete(parent.childByName, name)
	for i, id := range parent.childOrder {
		if id == n.id {
			parent.childOrder = append(parent.childOrder[:i], parent.childOrder[i+1:]...)
			break
		}
	}
}
