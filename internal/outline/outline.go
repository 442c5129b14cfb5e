// Package outline derives a document title and an H1–H3 heading outline from a
// PDF's text layer using font-size, weight and position heuristics.
//
// Detection runs in two phases: every block is collected first so the body font
// size (the most frequent size) is known, then blocks are classified against it.
package outline

import (
	"github.com/dgallion1/docsift/internal/pdftext"
)

// Level is a heading level in the emitted outline.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// Entry is one heading in the outline.
type Entry struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	Page  int    `json:"page" yaml:"page"`
}

// Outline is the per-document result.
type Outline struct {
	Title   string  `json:"title" yaml:"title"`
	Outline []Entry `json:"outline" yaml:"outline"`
}

// Block is a logical text run built from one or more merged spans.
type Block struct {
	Text     string
	FontSize float64
	FontName string
	Bold     bool
	Page     int
	BBox     pdftext.BBox
}

// Options holds the tunable thresholds. Gaps are in PDF points.
type Options struct {
	SpanMergeGap    float64 // max |Δy0| for merging spans within a line
	HeadingMergeGap float64 // max gap for joining a wrapped heading
	KeywordTitleGap float64 // max gap between keyword title fragments
	TitleMergeGap   float64 // max gap between typographic title fragments
	TitleMaxTop     float64 // typographic title must start above this y

	TitleKeywords       []string
	MinKeywordTitleLen  int
	TitleExcludeWords   []string
	ExcludeTitleHeading bool // drop page-1 outline entries equal to the title
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		SpanMergeGap:    3,
		HeadingMergeGap: 5,
		KeywordTitleGap: 50,
		TitleMergeGap:   30,
		TitleMaxTop:     300,
		TitleKeywords: []string{
			"application", "form", "grant", "advance", "report", "proposal", "certificate",
			"request", "statement", "summary", "plan", "notice", "order", "agreement",
		},
		MinKeywordTitleLen: 8,
		TitleExcludeWords:  []string{"RSVP", "ADDRESS", "DATE", "TIME", "FOR"},
	}
}

// Build runs the full outline pipeline over a parsed document.
func Build(doc *pdftext.Document, opts Options) Outline {
	blocks, sizes := Collect(doc, opts)
	if len(blocks) == 0 {
		return Outline{Title: "", Outline: []Entry{}}
	}

	body := BodyFontSize(sizes)
	title := SelectTitle(blocks, MaxFontSize(sizes), opts)
	entries := Assemble(blocks, NewClassifier(body), opts)

	if opts.ExcludeTitleHeading && title != "" {
		kept := entries[:0]
		for _, e := range entries {
			if e.Page == 1 && e.Text == title {
				continue
			}
			kept = append(kept, e)
		}
		entries = kept
	}

	return Outline{Title: title, Outline: entries}
}
