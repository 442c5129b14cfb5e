package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docsift/internal/outline"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `#`, `\#`, `<`, `\<`, `>`, `\>`,
)

// Markdown writes the title as a level-1 heading and each entry one level deeper
// than its outline level, annotated with its page.
type Markdown struct{}

func (Markdown) Extension() string   { return ".md" }
func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }

func (Markdown) Render(w io.Writer, o outline.Outline) error {
	_, err := w.Write(markdownBytes(o))
	return err
}

func markdownBytes(o outline.Outline) []byte {
	var buf bytes.Buffer
	if o.Title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", mdEscaper.Replace(o.Title))
	}
	for _, e := range o.Outline {
		fmt.Fprintf(&buf, "%s %s (p. %d)\n\n", strings.Repeat("#", headingDepth(e.Level)+1), mdEscaper.Replace(e.Text), e.Page)
	}
	return buf.Bytes()
}

// headingDepth maps H1..H3 to 1..3.
func headingDepth(l outline.Level) int {
	switch l {
	case outline.H1:
		return 1
	case outline.H2:
		return 2
	default:
		return 3
	}
}
