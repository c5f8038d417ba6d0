package strokes

import (
	"io"
	"log"

	"github.com/jung-kurt/gofpdf"
)

// canvasWidth and canvasHeight are the tablet's stroke coordinate space.
const (
	canvasWidth  = 1404.0
	canvasHeight = 1872.0
	pageHeightPt = 600.0
)

var strokeColour = map[uint32][3]int{
	0: {0, 0, 0},
	1: {128, 128, 128},
	2: {255, 255, 255},
}

// Render draws doc to a PDF written to w, one page per decoded page,
// overlaying templates[i] (a local PNG path, or "" for none) as the first
// drawing operation on page i. A page with no entry in templates (including
// a nil slice) gets no template; extra entries are ignored.
func Render(doc *Document, templates []string, w io.Writer) error {
	pageWidthPt := pageHeightPt * canvasWidth / canvasHeight
	xfactor := pageWidthPt / canvasWidth
	yfactor := pageHeightPt / canvasHeight

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        "",
		Size:           gofpdf.SizeType{Wd: pageWidthPt, Ht: pageHeightPt},
	})

	for i, page := range doc.Pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageWidthPt, Ht: pageHeightPt})

		if i < len(templates) && templates[i] != "" {
			pdf.Image(templates[i], 0, 0, pageWidthPt, pageHeightPt, false, "", 0, "")
		}

		for _, layer := range page.Layers {
			for _, stroke := range layer.Strokes {
				drawStroke(pdf, stroke, xfactor, yfactor)
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func drawStroke(pdf *gofpdf.Fpdf, s Stroke, xfactor, yfactor float64) {
	width := float64(s.Width)
	colour := s.Colour
	opacity := 1.0
	dynamic := false

	switch s.Pen {
	case 0:
		dynamic = true
	case 1:
		dynamic = true
	case 2, 4:
		width = 32*width*width - 116*width + 107
	case 3:
		width = 64*width - 112
		opacity = 0.9
	case 5:
		width = 30
		opacity = 0.2
	case 6:
		width = 1280*width*width - 4800*width + 4510
		colour = 2
	case 7:
		width = 16*width - 27
		opacity = 0.9
	case 8:
		opacity = 0
	default:
		log.Printf("[strokes] unknown pen %d, drawing invisible", s.Pen)
		opacity = 0
	}

	rgb := strokeColour[colour]

	var lastX, lastY float64
	haveLast := false
	for _, seg := range s.Segments {
		x := float64(seg.X)
		y := float64(seg.Y)
		p := float64(seg.Pressure)
		tilt := float64(seg.Tilt)

		if dynamic {
			if s.Pen == 0 {
				width = (5 * tilt) * (6*float64(s.Width) - 10) * (1 + 2*p*p*p)
			} else {
				width = (10*tilt - 2) * (8*float64(s.Width) - 14)
				opacity = (p - 0.2) * (p - 0.2)
			}
		}

		pdf.SetDrawColor(rgb[0], rgb[1], rgb[2])
		pdf.SetAlpha(opacity, "Normal")
		pdf.SetLineWidth(width * xfactor)

		if haveLast {
			pdf.Line(lastX*xfactor, lastY*yfactor, x*xfactor, y*yfactor)
		}
		lastX, lastY = x, y
		haveLast = true
	}
}
