// Package render writes an outline in one of the supported output formats.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dgallion1/docsift/internal/outline"
	"gopkg.in/yaml.v3"
)

// Renderer serializes an outline.
type Renderer interface {
	Render(w io.Writer, o outline.Outline) error
	// Extension is the output file extension, including the dot.
	Extension() string
	// ContentType is the MIME type used when serving the rendered outline.
	ContentType() string
}

var renderers = map[string]Renderer{
	"json":     JSON{},
	"yaml":     YAML{},
	"markdown": Markdown{},
	"md":       Markdown{},
	"html":     HTML{},
	"docx":     DOCX{},
}

// ForFormat returns the renderer for a format name (case-insensitive).
// An empty name selects JSON.
func ForFormat(name string) (Renderer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "json"
	}
	r, ok := renderers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s", name)
	}
	return r, nil
}

// Formats lists the accepted format names.
func Formats() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JSON is the canonical output: {"title": ..., "outline": [...]}.
type JSON struct{}

func (JSON) Extension() string   { return ".json" }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Render(w io.Writer, o outline.Outline) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(o)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

type YAML struct{}

func (YAML) Extension() string   { return ".yaml" }
func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Render(w io.Writer, o outline.Outline) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(o)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// normalize guarantees an empty outline serializes as a list, not null.
func normalize(o outline.Outline) outline.Outline {
	if o.Outline == nil {
		o.Outline = []outline.Entry{}
	}
	return o
}
