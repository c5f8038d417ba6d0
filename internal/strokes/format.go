// Package strokes decodes the reMarkable tablet's proprietary ".lines"
// binary stroke format and renders it to PDF.
package strokes

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
)

// header is the fixed ASCII literal every valid .lines file starts with.
const header = "reMarkable lines with selections and layers"

// Segment is one point on a stroke's polyline.
type Segment struct {
	X, Y     float32
	Pressure float32
	Tilt     float32
}

// Stroke is one pen-down-to-pen-up polyline.
type Stroke struct {
	Pen      uint32
	Colour   uint32
	Width    float32
	Segments []Segment
}

// Layer is an ordered set of strokes drawn on one page.
type Layer struct {
	Strokes []Stroke
}

// Page is an ordered set of layers.
type Page struct {
	Layers []Layer
}

// Document is the fully decoded contents of one .lines file.
type Document struct {
	Pages []Page
}

// TotalSegments sums segment counts across every stroke on every page,
// matching the invariant the stroke decoder test checks: total segments
// decoded equals the sum of per-stroke segment_count fields in the wire
// format.
func (d *Document) TotalSegments() int {
	n := 0
	for _, p := range d.Pages {
		for _, l := range p.Layers {
			for _, s := range l.Strokes {
				n += len(s.Segments)
			}
		}
	}
	return n
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int { return len(r.data) - r.off }

func (r *reader) bytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("strokes: unexpected end of data at offset %d, need %d bytes", r.off, n)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Decode parses a .lines byte blob per the wire format: a fixed 43-byte
// header and page count, then per page a layer count, per layer a stroke
// count, per stroke five fields followed by that many five-float segments.
func Decode(data []byte) (*Document, error) {
	if len(data) < len(header)+4 {
		return nil, fmt.Errorf("strokes: %w: file too short", ErrMalformed)
	}

	r := &reader{data: data}
	got, err := r.bytes(len(header))
	if err != nil {
		return nil, fmt.Errorf("strokes: %w: %v", ErrMalformed, err)
	}
	if string(got) != header {
		return nil, fmt.Errorf("strokes: %w: bad header %q", ErrMalformed, got)
	}

	npages, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("strokes: %w: %v", ErrMalformed, err)
	}
	if npages < 1 {
		return nil, fmt.Errorf("strokes: %w: page count %d < 1", ErrMalformed, npages)
	}

	doc := &Document{Pages: make([]Page, 0, npages)}
	for page := uint32(0); page < npages; page++ {
		p, err := decodePage(r)
		if err != nil {
			return nil, fmt.Errorf("strokes: %w: page %d: %w", ErrMalformed, page, err)
		}
		doc.Pages = append(doc.Pages, p)
	}
	return doc, nil
}

func decodePage(r *reader) (Page, error) {
	nlayers, err := r.u8()
	if err != nil {
		return Page{}, err
	}
	bUnk, err := r.u8()
	if err != nil {
		return Page{}, err
	}
	hUnk, err := r.u16()
	if err != nil {
		return Page{}, err
	}
	if bUnk != 0 || hUnk != 0 {
		log.Printf("[strokes] unexpected reserved page fields: %d, %d", bUnk, hUnk)
	}

	p := Page{Layers: make([]Layer, 0, nlayers)}
	for i := uint8(0); i < nlayers; i++ {
		l, err := decodeLayer(r)
		if err != nil {
			return Page{}, fmt.Errorf("layer %d: %w", i, err)
		}
		p.Layers = append(p.Layers, l)
	}
	return p, nil
}

func decodeLayer(r *reader) (Layer, error) {
	nstrokes, err := r.u32()
	if err != nil {
		return Layer{}, err
	}

	l := Layer{Strokes: make([]Stroke, 0, nstrokes)}
	for i := uint32(0); i < nstrokes; i++ {
		s, err := decodeStroke(r)
		if err != nil {
			return Layer{}, fmt.Errorf("stroke %d: %w", i, err)
		}
		l.Strokes = append(l.Strokes, s)
	}
	return l, nil
}

func decodeStroke(r *reader) (Stroke, error) {
	pen, err := r.u32()
	if err != nil {
		return Stroke{}, err
	}
	colour, err := r.u32()
	if err != nil {
		return Stroke{}, err
	}
	if _, err := r.u32(); err != nil { // reserved
		return Stroke{}, err
	}
	width, err := r.f32()
	if err != nil {
		return Stroke{}, err
	}
	nsegments, err := r.u32()
	if err != nil {
		return Stroke{}, err
	}

	s := Stroke{Pen: pen, Colour: colour, Width: width, Segments: make([]Segment, 0, nsegments)}
	for i := uint32(0); i < nsegments; i++ {
		x, err := r.f32()
		if err != nil {
			return Stroke{}, err
		}
		y, err := r.f32()
		if err != nil {
			return Stroke{}, err
		}
		pressure, err := r.f32()
		if err != nil {
			return Stroke{}, err
		}
		tilt, err := r.f32()
		if err != nil {
			return Stroke{}, err
		}
		if _, err := r.f32(); err != nil { // reserved
			return Stroke{}, err
		}
		s.Segments = append(s.Segments, Segment{X: x, Y: y, Pressure: pressure, Tilt: tilt})
	}
	return s, nil
}
