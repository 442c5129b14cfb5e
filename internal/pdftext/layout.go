package pdftext

import (
	"math"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Glyph grouping factors, all relative to font size or line height.
const (
	baselineTolerance = 0.5 // glyphs within this × size of the baseline share a line
	wordGapFactor     = 0.25
	blockGapFactor    = 0.8 // line gap ≤ this × previous line height stays in the block

	ascent  = 0.8
	descent = 0.2
)

type spanBuilder struct {
	text         strings.Builder
	font         string
	size         float64
	bbox         BBox
	lastX1       float64
	pendingSpace bool
}

func (sb *spanBuilder) span() (Span, bool) {
	text := strings.TrimSpace(norm.NFKC.String(sb.text.String()))
	if text == "" {
		return Span{}, false
	}
	return Span{
		Text:     text,
		FontSize: sb.size,
		FontName: sb.font,
		Bold:     IsBoldFont(sb.font),
		BBox:     sb.bbox,
	}, true
}

func buildPage(number int, width, height float64, glyphs []pdflib.Text) Page {
	return Page{
		Number: number,
		Width:  width,
		Height: height,
		Blocks: groupBlocks(groupLines(glyphs, height)),
	}
}

// groupLines walks glyphs in content-stream order and cuts a new line whenever
// the baseline moves, and a new span whenever the font or size changes.
func groupLines(glyphs []pdflib.Text, pageHeight float64) []Line {
	var (
		lines    []Line
		cur      Line
		inLine   bool
		baseline float64
		lineSize float64
		sb       *spanBuilder
	)

	flushSpan := func() {
		if sb == nil {
			return
		}
		if s, ok := sb.span(); ok {
			if len(cur.Spans) == 0 {
				cur.BBox = s.BBox
			} else {
				cur.BBox = cur.BBox.Union(s.BBox)
			}
			cur.Spans = append(cur.Spans, s)
		}
		sb = nil
	}
	flushLine := func() {
		flushSpan()
		if len(cur.Spans) > 0 {
			lines = append(lines, cur)
		}
		cur = Line{}
		inLine = false
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := math.Abs(g.FontSize)
		y := pageHeight - g.Y

		if inLine && math.Abs(y-baseline) > baselineTolerance*max(size, lineSize, 1) {
			flushLine()
		}
		if !inLine {
			inLine = true
			baseline = y
			lineSize = size
		}
		lineSize = max(lineSize, size)

		if strings.TrimSpace(g.S) == "" {
			if sb != nil {
				sb.pendingSpace = true
			}
			continue
		}

		font := CleanFontName(g.Font)
		if sb != nil && (sb.font != font || math.Abs(sb.size-size) > 0.01) {
			flushSpan()
		}

		box := BBox{X0: g.X, Y0: y - ascent*size, X1: g.X + g.W, Y1: y + descent*size}
		if sb == nil {
			sb = &spanBuilder{font: font, size: size, bbox: box}
		} else {
			if sb.pendingSpace || g.X-sb.lastX1 > wordGapFactor*size {
				sb.text.WriteByte(' ')
			}
			sb.bbox = sb.bbox.Union(box)
		}
		sb.pendingSpace = false
		sb.text.WriteString(g.S)
		sb.lastX1 = g.X + g.W
	}
	flushLine()
	return lines
}

func groupBlocks(lines []Line) []Block {
	var blocks []Block
	for _, l := range lines {
		if n := len(blocks); n > 0 {
			last := &blocks[n-1]
			prev := last.Lines[len(last.Lines)-1]
			gap := l.BBox.Y0 - prev.BBox.Y1
			h := prev.BBox.Height()
			if gap <= blockGapFactor*h && gap >= -h {
				last.Lines = append(last.Lines, l)
				last.BBox = last.BBox.Union(l.BBox)
				continue
			}
		}
		blocks = append(blocks, Block{Lines: []Line{l}, BBox: l.BBox})
	}
	return blocks
}

// CleanFontName strips the six-letter subset tag ("ABCDEF+Helvetica" → "Helvetica").
func CleanFontName(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}

// IsBoldFont reports whether a font name denotes a bold weight.
func IsBoldFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "bold") || strings.Contains(n, "black") || strings.Contains(n, "heavy")
}
