package outline

import (
	"math"
	"strings"

	"github.com/dgallion1/docsift/internal/pdftext"
)

// Collect flattens the document into blocks, merging adjacent spans of a line
// whose tops differ by less than opts.SpanMergeGap (a bold fragment followed by
// a regular one becomes a single block). It also returns every block's font size.
func Collect(doc *pdftext.Document, opts Options) ([]Block, []float64) {
	var (
		blocks []Block
		sizes  []float64
	)
	if doc == nil {
		return nil, nil
	}

	emit := func(b *Block) {
		if b == nil {
			return
		}
		b.Text = strings.TrimSpace(b.Text)
		if b.Text == "" {
			return
		}
		blocks = append(blocks, *b)
		sizes = append(sizes, b.FontSize)
	}

	for _, page := range doc.Pages {
		for _, pb := range page.Blocks {
			for _, line := range pb.Lines {
				var acc *Block
				for _, s := range line.Spans {
					text := strings.TrimSpace(s.Text)
					if text == "" {
						continue
					}
					if acc != nil && math.Abs(s.BBox.Y0-acc.BBox.Y0) < opts.SpanMergeGap {
						acc.Text += " " + text
						acc.BBox = acc.BBox.Union(s.BBox)
						acc.FontSize = max(acc.FontSize, s.FontSize)
						acc.Bold = acc.Bold || s.Bold
						continue
					}
					emit(acc)
					acc = &Block{
						Text:     text,
						FontSize: s.FontSize,
						FontName: s.FontName,
						Bold:     s.Bold,
						Page:     page.Number,
						BBox:     s.BBox,
					}
				}
				emit(acc)
			}
		}
	}
	return blocks, sizes
}

// roundSize quantizes a font size to 0.01pt. Every size comparison goes through it,
// since PDF sizes are text-matrix products such as 9.9626 or 11.955.
func roundSize(s float64) float64 {
	return math.Round(s*100) / 100
}

// BodyFontSize returns the most frequent font size, rounded by roundSize; ties go
// to the size seen first. Returns 0 for no input.
func BodyFontSize(sizes []float64) float64 {
	counts := make(map[float64]int, len(sizes))
	var order []float64
	for _, s := range sizes {
		k := roundSize(s)
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	var body float64
	best := 0
	for _, k := range order {
		if counts[k] > best {
			body, best = k, counts[k]
		}
	}
	return body
}

// MaxFontSize returns the largest size, or 0 for no input.
func MaxFontSize(sizes []float64) float64 {
	var m float64
	for _, s := range sizes {
		m = max(m, s)
	}
	return m
}
