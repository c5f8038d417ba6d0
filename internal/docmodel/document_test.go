package docmodel

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/nick8325/remarkable-fs/internal/templates"
	"github.com/nick8325/remarkable-fs/internal/transport"
)

// linesHeader mirrors the fixed ASCII literal internal/strokes requires;
// duplicated here since the constant itself is unexported.
const linesHeader = "reMarkable lines with selections and layers"

// buildLinesBlob constructs a minimal, valid .lines file with one page, one
// layer, one stroke of nsegs segments.
func buildLinesBlob(nsegs int) []byte {
	var buf bytes.Buffer
	buf.WriteString(linesHeader)
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // one page

	binary.Write(&buf, binary.LittleEndian, uint8(1)) // one layer
	binary.Write(&buf, binary.LittleEndian, uint8(0))
	binary.Write(&buf, binary.LittleEndian, uint16(0))

	binary.Write(&buf, binary.LittleEndian, uint32(1)) // one stroke
	binary.Write(&buf, binary.LittleEndian, uint32(2)) // pen
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // colour
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // reserved
	binary.Write(&buf, binary.LittleEndian, math.Float32bits(1.5))
	binary.Write(&buf, binary.LittleEndian, uint32(nsegs))
	for i := 0; i < nsegs; i++ {
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(float32(i)))
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(float32(i)))
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(0.5))
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(0))
		binary.Write(&buf, binary.LittleEndian, uint32(0))
	}
	return buf.Bytes()
}

func TestReadMaterializesLinesNotebookToPdf(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	tc := templates.New(fake, t.TempDir())
	tree := NewTree(fake, tc)
	if err := tree.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	putMetadata(t, fake, "nb", Metadata{VisibleName: "Scribbles", Type: TypeDocument})
	putContent(t, fake, "nb", Content{FileType: ""})
	fake.Put("nb.lines", buildLinesBlob(3), time.Now())

	if err := tree.Load(); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	n, err := tree.FindNode("nb")
	if err != nil {
		t.Fatalf("FindNode(nb) error = %v", err)
	}

	data, err := n.Read(0, 1<<20)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("Read() did not start with %%PDF, got %q", head(data, 8))
	}

	// Materialization is memoized: a second read must not re-render (and
	// must return identical bytes).
	data2, err := n.Read(0, 1<<20)
	if err != nil {
		t.Fatalf("second Read() error = %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Error("second Read() returned different bytes than the first (not memoized)")
	}
}

func head(data []byte, n int) []byte {
	if n > len(data) {
		n = len(data)
	}
	return data[:n]
}

func TestReadPassesThroughPdfDirectly(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	tc := templates.New(fake, t.TempDir())
	tree := NewTree(fake, tc)

	putMetadata(t, fake, "doc", Metadata{VisibleName: "Report", Type: TypeDocument})
	putContent(t, fake, "doc", Content{FileType: "pdf"})
	fake.Put("doc.pdf", []byte("%PDF-1.4 report body"), time.Now())

	if err := tree.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	n, err := tree.FindNode("doc")
	if err != nil {
		t.Fatalf("FindNode(doc) error = %v", err)
	}
	data, err := n.Read(0, 100)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != "%PDF-1.4 report body" {
		t.Errorf("Read() = %q, want passthrough content", data)
	}
}

func TestReadOnCollectionIsADirectory(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	tc := templates.New(fake, t.TempDir())
	tree := NewTree(fake, tc)

	folder, err := tree.Root().NewCollection("Folder")
	if err != nil {
		t.Fatalf("NewCollection() error = %v", err)
	}
	if _, err := folder.Read(0, 10); err == nil {
		t.Fatal("Read() on a collection error = nil, want is-a-directory")
	} else if KindOf(err) != KindIsADirectory {
		t.Errorf("KindOf = %v, want KindIsADirectory", KindOf(err))
	}
}

func TestResolveTemplatesToleratesMissingPagedata(t *testing.T) {
	t.Parallel()
	fake := transport.NewFake()
	tc := templates.New(fake, t.TempDir())
	tree := NewTree(fake, tc)

	putMetadata(t, fake, "nb", Metadata{VisibleName: "Notes", Type: TypeDocument})
	putContent(t, fake, "nb", Content{FileType: ""})
	fake.Put("nb.lines", buildLinesBlob(1), time.Now())

	if err := tree.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	n, err := tree.FindNode("nb")
	if err != nil {
		t.Fatalf("FindNode(nb) error = %v", err)
	}

	if _, err := n.Read(0, 1<<20); err != nil {
		t.Fatalf("Read() without .pagedata error = %v, want tolerated", err)
	}
}

