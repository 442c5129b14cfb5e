package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	separatorRe     = regexp.MustCompile(`^[-_]+$`)
	numberedHeading = regexp.MustCompile(`^\p{Nd}+(\.\p{Nd}+)*[\s\p{Zs}]+`)
)

// Classifier decides heading status relative to a document's body font size.
type Classifier struct {
	Body float64
}

// NewClassifier returns a classifier for the given body font size.
func NewClassifier(body float64) Classifier {
	return Classifier{Body: roundSize(body)}
}

// IsHeading applies the heading rules in order; the first decisive rule wins.
func (c Classifier) IsHeading(b Block) bool {
	text := b.Text
	size := roundSize(b.FontSize)
	switch {
	case utf8.RuneCountInString(text) < 3:
		return false
	case separatorRe.MatchString(text):
		return false
	case size > c.Body:
		return true
	case b.Bold && size >= c.Body:
		return true
	case isUpper(text) && size >= c.Body:
		return true
	case numberedHeading.MatchString(text):
		// Structural numbering overrides typography.
		return true
	case strings.Contains(strings.ToLower(b.FontName), "bold") && size >= c.Body:
		return true
	}
	return false
}

// Level maps a heading's font size to H1/H2/H3 by its distance above body size.
func (c Classifier) Level(fontSize float64) Level {
	above := roundSize(roundSize(fontSize) - c.Body)
	switch {
	case above >= 3:
		return H1
	case above >= 1:
		return H2
	default:
		return H3
	}
}

// isUpper reports whether s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}
