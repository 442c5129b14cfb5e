// Package pdftext turns a PDF's text layer into an ordered page → block → line → span
// tree with font metadata and top-left-origin bounding boxes.
package pdftext

import "strings"

// BBox is a rectangle in page space with the origin at the top-left corner.
// Y grows downward, so Y0 is the top edge and Y1 the bottom edge.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Union returns the smallest box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// Height returns Y1 - Y0.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Document is the parsed text layer of one PDF.
type Document struct {
	Name  string
	Pages []Page
}

// Page holds the text blocks of one page, in content-stream order.
type Page struct {
	Number int // 1-based
	Width  float64
	Height float64
	Blocks []Block
}

// Block is a run of vertically adjacent lines (roughly a paragraph).
type Block struct {
	Lines []Line
	BBox  BBox
}

// Line is a row of spans sharing a baseline.
type Line struct {
	Spans []Span
	BBox  BBox
}

// Span is the smallest styled text run: one font, one size, one position.
type Span struct {
	Text     string
	FontSize float64
	FontName string
	Bold     bool
	BBox     BBox
}

// Text joins the line's spans with single spaces and collapses whitespace.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Spans))
	for _, s := range l.Spans {
		parts = append(parts, s.Text)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// LineTexts returns the non-empty line texts of the block.
func (b Block) LineTexts() []string {
	var out []string
	for _, l := range b.Lines {
		if t := l.Text(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SpanCount returns the number of spans across all pages.
func (d *Document) SpanCount() int {
	n := 0
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			for _, l := range b.Lines {
				n += len(l.Spans)
			}
		}
	}
	return n
}
