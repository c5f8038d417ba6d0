package strokes

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// buildLines constructs a minimal, valid .lines blob with the given pages,
// where each page is described as a slice of layers, each layer a slice of
// stroke segment counts.
func buildLines(t *testing.T, pages [][]int) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(header)
	binary.Write(&buf, binary.LittleEndian, uint32(len(pages)))

	for _, layers := range pages {
		binary.Write(&buf, binary.LittleEndian, uint8(len(layers)))
		binary.Write(&buf, binary.LittleEndian, uint8(0))
		binary.Write(&buf, binary.LittleEndian, uint16(0))

		for _, nsegs := range layers {
			binary.Write(&buf, binary.LittleEndian, uint32(1)) // one stroke per layer
			// stroke header: pen, colour, reserved, width, segment_count
			binary.Write(&buf, binary.LittleEndian, uint32(2))
			binary.Write(&buf, binary.LittleEndian, uint32(0))
			binary.Write(&buf, binary.LittleEndian, uint32(0))
			binary.Write(&buf, binary.LittleEndian, math.Float32bits(1.5))
			binary.Write(&buf, binary.LittleEndian, uint32(nsegs))
			for i := 0; i < nsegs; i++ {
				binary.Write(&buf, binary.LittleEndian, math.Float32bits(float32(i)))
				binary.Write(&buf, binary.LittleEndian, math.Float32bits(float32(i)))
				binary.Write(&buf, binary.LittleEndian, math.Float32bits(0.5))
				binary.Write(&buf, binary.LittleEndian, math.Float32bits(0))
				binary.Write(&buf, binary.LittleEndian, uint32(0))
			}
		}
	}
	return buf.Bytes()
}

func TestDecodeSegmentAndPageCounts(t *testing.T) {
	t.Parallel()
	data := buildLines(t, [][]int{{3, 5}, {2}})

	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("len(doc.Pages) = %d, want 2", len(doc.Pages))
	}
	if got, want := doc.TotalSegments(), 3+5+2; got != want {
		t.Errorf("TotalSegments() = %d, want %d", got, want)
	}
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	t.Parallel()
	data := append([]byte("not a remarkable file at all, too short or wrong"), 0, 0, 0, 0)
	if _, err := Decode(data); err == nil {
		t.Error("Decode() with bad header error = nil, want error")
	}
}

func TestDecodeRejectsZeroPages(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	buf.WriteString(header)
	binary.Write(&buf, binary.LittleEndian, uint32(0))

	if _, err := Decode(buf.Bytes()); err == nil {
		t.Error("Decode() with 0 pages error = nil, want error")
	}
}

func TestDecodeTruncatedData(t *testing.T) {
	t.Parallel()
	data := buildLines(t, [][]int{{4}})
	truncated := data[:len(data)-10]

	if _, err := Decode(truncated); err == nil {
		t.Error("Decode() on truncated data error = nil, want error")
	}
}
