// Package rank orders document sections by relevance to a persona and task:
// a hybrid embedding/heuristic retrieval, a cross-encoder re-rank of the
// survivors, and a per-section pick of the most relevant lines.
package rank

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/sections"
)

// Hybrid score weights. Semantic similarity dominates; longer sections and
// earlier pages get a modest boost.
const (
	SimilarityWeight = 0.65
	LengthWeight     = 0.25
	PositionWeight   = 0.10

	lengthSaturation = 500 // characters at which the length term caps at 1
	pageDecay        = 0.1
)

// RankedSection is a section with its retrieval scores.
type RankedSection struct {
	sections.Section
	Score          float64
	Similarity     float64
	ImportanceRank int // 1-based within the kept set, 0 = unranked
}

// HybridScore blends similarity with length and page-position terms.
func HybridScore(similarity float64, textLen, page int) float64 {
	length := min(float64(textLen)/lengthSaturation, 1.0)
	position := max(1.0-pageDecay*float64(page-1), 0)
	return SimilarityWeight*similarity + LengthWeight*length + PositionWeight*position
}

// Hybrid scores every section against the query, sorts by score (stable,
// descending) and keeps the top topK, ranked 1..k. topK <= 0 keeps all.
// maxPerDoc > 0 caps how many sections a single document may contribute.
func Hybrid(secs []sections.Section, vecs [][]float32, query []float32, topK, maxPerDoc int) ([]RankedSection, error) {
	if len(secs) != len(vecs) {
		return nil, fmt.Errorf("have %d sections but %d vectors", len(secs), len(vecs))
	}

	ranked := make([]RankedSection, len(secs))
	for i, s := range secs {
		sim := embed.Cosine(query, vecs[i])
		ranked[i] = RankedSection{
			Section:    s,
			Similarity: sim,
			Score:      HybridScore(sim, utf8.RuneCountInString(s.FullText), s.Page),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if topK <= 0 || topK > len(ranked) {
		topK = len(ranked)
	}
	kept := make([]RankedSection, 0, topK)
	perDoc := make(map[string]int)
	for _, r := range ranked {
		if len(kept) == topK {
			break
		}
		if maxPerDoc > 0 && perDoc[r.Document] >= maxPerDoc {
			continue
		}
		perDoc[r.Document]++
		kept = append(kept, r)
	}
	assignRanks(kept)
	return kept, nil
}

func assignRanks(ranked []RankedSection) {
	for i := range ranked {
		ranked[i].ImportanceRank = i + 1
	}
}
