// Package sections splits PDFs into candidate sections for ranking: one per
// text block, titled by its first line.
package sections

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsift/internal/pdftext"
)

const (
	// MinTextLen is the shortest full text (in characters) kept as a section.
	MinTextLen = 30
	// MaxTitleLen bounds section titles, in characters.
	MaxTitleLen = 80

	minTitleLen = 5
)

var bulletGlyphs = map[string]bool{
	"•": true, "◦": true, "▪": true, "·": true, "-": true, "–": true, "*": true,
}

// Section is one candidate block of a document page.
type Section struct {
	Document string
	Page     int
	Title    string
	FullText string // lines joined with "\n"
}

// Extract returns the sections of a parsed document, in page and block order.
func Extract(doc *pdftext.Document, filename string) []Section {
	var out []Section
	if doc == nil {
		return out
	}
	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			lines := block.LineTexts()
			if len(lines) == 0 {
				continue
			}
			full := strings.Join(lines, "\n")
			if utf8.RuneCountInString(full) < MinTextLen {
				continue
			}
			out = append(out, Section{
				Document: filename,
				Page:     page.Number,
				Title:    sectionTitle(lines),
				FullText: full,
			})
		}
	}
	return out
}

// sectionTitle uses the first line when it looks like a title, otherwise the
// text up to the first period.
func sectionTitle(lines []string) string {
	if first := truncate(lines[0], MaxTitleLen); validTitle(first) {
		return first
	}
	flat := strings.Join(lines, " ")
	if i := strings.IndexByte(flat, '.'); i >= 0 {
		flat = flat[:i]
	}
	return truncate(flat, MaxTitleLen)
}

func validTitle(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || bulletGlyphs[s] {
		return false
	}
	return utf8.RuneCountInString(s) >= minTitleLen
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// DocumentError reports a listed document that cannot be used: its name escapes
// the PDF directory or the file does not parse.
type DocumentError struct {
	Name string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %q: %v", e.Name, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

var errEscapesDir = errors.New("path escapes pdf directory")

// ExtractAll opens each named PDF under dir and concatenates their sections in
// the given order. Missing files are logged and skipped; an unusable document
// aborts with a *DocumentError.
func ExtractAll(ctx context.Context, dir string, filenames []string, open pdftext.OpenFunc, log *slog.Logger) ([]Section, error) {
	var all []Section
	for _, name := range filenames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !filepath.IsLocal(name) {
			return nil, &DocumentError{Name: name, Err: errEscapesDir}
		}

		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			log.Warn("document not found, skipping", "file", name, "dir", dir)
			continue
		}

		doc, err := open(path)
		if err != nil {
			return nil, &DocumentError{Name: name, Err: err}
		}
		secs := Extract(doc, filepath.Base(name))
		log.Debug("sections extracted", "file", name, "count", len(secs))
		all = append(all, secs...)
	}
	return all, nil
}
