package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsift/internal/embed"
)

// MinChunkLen is the shortest line, in characters, considered for a subsection.
const MinChunkLen = 20

// Subsection is a refined excerpt of a ranked section.
type Subsection struct {
	Document    string `json:"document"`
	PageNumber  int    `json:"page_number"`
	RefinedText string `json:"refined_text"`
}

// Chunks splits a section's text on line breaks and keeps trimmed lines of at
// least MinChunkLen characters.
func Chunks(fullText string) []string {
	var out []string
	for _, line := range strings.Split(fullText, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) >= MinChunkLen {
			out = append(out, line)
		}
	}
	return out
}

// Subsections encodes the section's chunks in one call and returns the maxSubs
// chunks most similar to the query vector, best first.
func Subsections(ctx context.Context, emb Embedder, query []float32, sec RankedSection, maxSubs int) ([]Subsection, error) {
	chunks := Chunks(sec.FullText)
	if len(chunks) == 0 || maxSubs <= 0 {
		return nil, nil
	}

	vecs, err := emb.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks of %s p.%d: %w", sec.Document, sec.Page, err)
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{text: c, score: embed.Dot(query, vecs[i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := min(maxSubs, len(ranked))
	out := make([]Subsection, n)
	for i := range n {
		out[i] = Subsection{Document: sec.Document, PageNumber: sec.Page, RefinedText: ranked[i].text}
	}
	return out, nil
}
