package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/docsift/internal/outline"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML converts the Markdown rendering with goldmark and wraps it in a full document.
type HTML struct{}

func (HTML) Extension() string   { return ".html" }
func (HTML) ContentType() string { return "text/html; charset=utf-8" }

func (HTML) Render(w io.Writer, o outline.Outline) error {
	var body bytes.Buffer
	if err := goldmark.Convert(markdownBytes(o), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}

	bodyNode := element(atom.Body)
	nodes, err := html.ParseFragment(&body, bodyNode)
	if err != nil {
		return fmt.Errorf("parse html fragment: %w", err)
	}
	for _, n := range nodes {
		bodyNode.AppendChild(n)
	}

	title := o.Title
	if title == "" {
		title = "Outline"
	}
	titleNode := element(atom.Title)
	titleNode.AppendChild(&html.Node{Type: html.TextNode, Data: title})

	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}

	head := element(atom.Head)
	head.AppendChild(meta)
	head.AppendChild(titleNode)

	root := element(atom.Html)
	root.AppendChild(head)
	root.AppendChild(bodyNode)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
