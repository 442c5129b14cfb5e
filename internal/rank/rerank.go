package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgallion1/docsift/internal/rerank"
)

// CrossWeight scales the cross-encoder score added to the hybrid score.
const CrossWeight = 0.5

// ReRank adds CrossWeight × the cross-encoder score of (query, full text) to each
// candidate, re-sorts, keeps at most maxRerank and re-ranks them 1..n.
// The input slice is not modified. maxRerank <= 0 keeps every candidate.
func ReRank(ctx context.Context, ce rerank.CrossEncoder, query string, candidates []RankedSection, maxRerank int) ([]RankedSection, error) {
	if len(candidates) == 0 {
		return []RankedSection{}, nil
	}

	pairs := make([]rerank.Pair, len(candidates))
	for i, c := range candidates {
		pairs[i] = rerank.Pair{Query: query, Text: c.FullText}
	}
	scores, err := ce.Predict(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("cross-encoder: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("cross-encoder returned %d scores for %d pairs", len(scores), len(candidates))
	}

	out := make([]RankedSection, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Score += CrossWeight * scores[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if maxRerank > 0 && len(out) > maxRerank {
		out = out[:maxRerank]
	}
	assignRanks(out)
	return out, nil
}
