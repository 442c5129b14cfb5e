package render

import (
	"fmt"
	"io"

	"github.com/dgallion1/docsift/internal/outline"
	"github.com/fumiama/go-docx"
)

// Run sizes are in half-points.
var docxSizes = map[outline.Level]string{
	outline.H1: "32",
	outline.H2: "28",
	outline.H3: "24",
}

// DOCX writes one paragraph per entry, styled Heading1..Heading3, after a centred title.
type DOCX struct{}

func (DOCX) Extension() string { return ".docx" }
func (DOCX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (DOCX) Render(w io.Writer, o outline.Outline) error {
	doc := docx.New().WithDefaultTheme()

	if o.Title != "" {
		p := doc.AddParagraph().Style("Title").Justification("center")
		p.AddText(o.Title).Size("40").Bold()
	}
	for _, e := range o.Outline {
		p := doc.AddParagraph().Style(fmt.Sprintf("Heading%d", headingDepth(e.Level)))
		run := p.AddText(e.Text).Size(docxSizes[e.Level])
		if e.Level == outline.H1 {
			run.Bold()
		}
		p.AddText(fmt.Sprintf("  (p. %d)", e.Page)).Size("18")
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
