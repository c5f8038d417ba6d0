package docmodel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nick8325/remarkable-fs/internal/templates"
	"github.com/nick8325/remarkable-fs/internal/transport"
)

func putMetadata(t *testing.T, fake *transport.Fake, id string, m Metadata) {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	fake.Put(id+".metadata", data, time.Now())
}

func putContent(t *testing.T, fake *transport.Fake, id string, c Content) {
	t.Helper()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	fake.Put(id+".content", data, time.Now())
}

func newTestTree(t *testing.T, fake *transport.Fake) *Tree {
	t.Helper()
	tc := templates.New(fake, t.TempDir())
	tree := NewTree(fake, tc)
	if err := tree.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return tree
}

// TestColdMountReaddirRoot is scenario S1.
func TestColdMountReaddirRoot(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	putMetadata(t, fake, "a", Metadata{VisibleName: "Book", Type: TypeDocument, Parent: ""})
	putContent(t, fake, "a", Content{FileType: "pdf"})
	fake.Put("a.pdf", []byte("%PDF-1.4 book"), time.Now())

	putMetadata(t, fake, "b", Metadata{VisibleName: "Notebook", Type: TypeDocument, Parent: ""})
	putContent(t, fake, "b", Content{FileType: ""})
	fake.Put("b.lines", []byte("lines-bytes"), time.Now())

	tree := newTestTree(t, fake)

	names := map[string]bool{}
	for _, c := range tree.Root().Children() {
		names[c.Name()] = true
	}
	if !names["Book.pdf"] || !names["Notebook.pdf"] {
		t.Errorf("Children() = %v, want Book.pdf and Notebook.pdf", names)
	}
	if len(names) != 2 {
		t.Errorf("Children() returned %d distinct names, want 2", len(names))
	}
}

// TestNameCollisionDisambiguation is scenario S2.
func TestNameCollisionDisambiguation(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	putMetadata(t, fake, "a-first", Metadata{VisibleName: "Notes", Type: TypeDocument})
	putContent(t, fake, "a-first", Content{FileType: "pdf"})
	fake.Put("a-first.pdf", []byte("one"), time.Now())

	putMetadata(t, fake, "b-second", Metadata{VisibleName: "Notes", Type: TypeDocument})
	putContent(t, fake, "b-second", Content{FileType: "pdf"})
	fake.Put("b-second.pdf", []byte("two"), time.Now())

	tree := newTestTree(t, fake)

	names := []string{}
	for _, c := range tree.Root().Children() {
		names = append(names, c.Name())
	}
	if len(names) != 2 {
		t.Fatalf("Children() = %v, want 2 entries", names)
	}
	if names[0] != "Notes.pdf" || names[1] != "Notes.pdf (2)" {
		t.Errorf("Children() = %v, want [Notes.pdf Notes.pdf (2)]", names)
	}
}

func TestLoadDropsOrphans(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	putMetadata(t, fake, "orphan", Metadata{VisibleName: "Lost", Type: TypeDocument, Parent: "missing-parent"})
	putContent(t, fake, "orphan", Content{FileType: "pdf"})
	fake.Put("orphan.pdf", []byte("x"), time.Now())

	tree := newTestTree(t, fake)
	if len(tree.Root().Children()) != 0 {
		t.Errorf("Children() = %v, want none (orphan should be dropped)", tree.Root().Children())
	}
	if _, err := tree.FindNode("orphan"); err == nil {
		t.Error("FindNode(orphan) error = nil, want not-found (orphans are dropped entirely)")
	}
}

func TestLoadSkipsDeletedNodes(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	putMetadata(t, fake, "gone", Metadata{VisibleName: "Gone", Type: TypeDocument, Deleted: true})
	putContent(t, fake, "gone", Content{FileType: "pdf"})
	fake.Put("gone.pdf", []byte("x"), time.Now())

	tree := newTestTree(t, fake)
	if len(tree.Root().Children()) != 0 {
		t.Errorf("Children() = %v, want none", tree.Root().Children())
	}
}

func TestLoadUnknownTypeIsOpaqueAndUnlisted(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	putMetadata(t, fake, "weird", Metadata{VisibleName: "Weird", Type: "SomeFutureType"})

	tree := newTestTree(t, fake)
	if len(tree.Root().Children()) != 0 {
		t.Errorf("Children() = %v, want none (opaque nodes are never listed)", tree.Root().Children())
	}
	n, err := tree.FindNode("weird")
	if err != nil {
		t.Fatalf("FindNode(weird) error = %v, want node (registered for linking)", err)
	}
	if n.Kind() != NodeOpaque {
		t.Errorf("Kind() = %v, want NodeOpaque", n.Kind())
	}
}

func TestLoadDocumentWithoutPayloadIsInvisible(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	putMetadata(t, fake, "partial", Metadata{VisibleName: "Partial", Type: TypeDocument})
	putContent(t, fake, "partial", Content{FileType: ""}) // lines type but no .lines file written

	tree := newTestTree(t, fake)
	if len(tree.Root().Children()) != 0 {
		t.Errorf("Children() = %v, want none (I7 invisibility)", tree.Root().Children())
	}
	if _, err := tree.FindNode("partial"); err == nil {
		t.Error("FindNode(partial) error = nil, want not-found")
	}
}

func TestFindNodeEmptyIDReturnsRoot(t *testing.T) {
	t.Parallel()
	tree := newTestTree(t, transport.NewFake())
	n, err := tree.FindNode("")
	if err != nil {
		t.Fatalf("FindNode(\"\") error = %v", err)
	}
	if n != tree.Root() {
		t.Error("FindNode(\"\") did not return the root")
	}
}
