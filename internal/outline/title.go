package outline

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var alnumRunRe = regexp.MustCompile(`[A-Za-z0-9]{3,}`)

// SelectTitle picks the document title. Keyword-bearing page-1 blocks win; otherwise
// the largest bold blocks near the top of page 1 are used; otherwise the first
// plausible block anywhere. Returns "" when nothing qualifies.
func SelectTitle(blocks []Block, maxFont float64, opts Options) string {
	if kw := keywordBlocks(blocks, opts); len(kw) > 0 {
		return mergeTitle(kw, opts.KeywordTitleGap)
	}

	var typo []Block
	for _, b := range blocks {
		if b.Page == 1 &&
			roundSize(b.FontSize-maxFont) >= -1 &&
			b.Bold &&
			b.BBox.Y0 < opts.TitleMaxTop &&
			isPreferredTitle(b.Text, opts) {
			typo = append(typo, b)
		}
	}
	if title := mergeTitle(typo, opts.TitleMergeGap); title != "" {
		return title
	}

	for _, b := range blocks {
		if isPreferredTitle(b.Text, opts) {
			return b.Text
		}
	}
	return ""
}

func keywordBlocks(blocks []Block, opts Options) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Page != 1 || utf8.RuneCountInString(b.Text) <= opts.MinKeywordTitleLen {
			continue
		}
		lower := strings.ToLower(b.Text)
		for _, kw := range opts.TitleKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// mergeTitle sorts by top edge and joins blocks until the first gap (next top
// minus previous bottom) of at least maxGap.
func mergeTitle(blocks []Block, maxGap float64) string {
	if len(blocks) == 0 {
		return ""
	}
	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BBox.Y0 < sorted[j].BBox.Y0 })

	parts := []string{sorted[0].Text}
	bottom := sorted[0].BBox.Y1
	for _, b := range sorted[1:] {
		if b.BBox.Y0-bottom >= maxGap {
			break
		}
		parts = append(parts, b.Text)
		bottom = b.BBox.Y1
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func isValidTitle(text string) bool {
	return alnumRunRe.MatchString(text)
}

func isPreferredTitle(text string, opts Options) bool {
	if !isValidTitle(text) {
		return false
	}
	if strings.HasSuffix(strings.TrimSpace(text), ":") {
		return false
	}
	if separatorRe.MatchString(text) {
		return false
	}
	upper := strings.ToUpper(text)
	for _, w := range opts.TitleExcludeWords {
		if strings.Contains(upper, w) {
			return false
		}
	}
	return true
}
