package outline

import "math"

// heading is the in-progress accumulator for a possibly wrapped heading.
type heading struct {
	text     string
	fontSize float64
	bold     bool
	page     int
	y1       float64
}

// Assemble walks blocks in order, joins wrapped headings, assigns levels and
// drops repeated (level, text, page) entries. The result is never nil.
func Assemble(blocks []Block, c Classifier, opts Options) []Entry {
	var (
		entries []Entry
		acc     *heading
	)

	flush := func() {
		if acc == nil {
			return
		}
		entries = append(entries, Entry{Level: c.Level(acc.fontSize), Text: acc.text, Page: acc.page})
		acc = nil
	}

	for _, b := range blocks {
		if !c.IsHeading(b) {
			continue
		}
		if acc != nil && b.Page == acc.page && math.Abs(b.BBox.Y0-acc.y1) < opts.HeadingMergeGap {
			acc.text += " " + b.Text
			acc.y1 = max(acc.y1, b.BBox.Y1)
			acc.fontSize = max(acc.fontSize, b.FontSize)
			acc.bold = acc.bold || b.Bold
			continue
		}
		flush()
		acc = &heading{
			text:     b.Text,
			fontSize: b.FontSize,
			bold:     b.Bold,
			page:     b.Page,
			y1:       b.BBox.Y1,
		}
	}
	flush()

	return dedupe(entries)
}

func dedupe(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[Entry]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
