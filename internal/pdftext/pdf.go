package pdftext

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// US Letter in points, used when a page declares no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

func init() {
	// pdfcpu would otherwise create a config directory under $HOME.
	api.DisableConfigDir()
}

// OpenFunc loads a PDF from disk. Pipelines accept one so tests can substitute fixtures.
type OpenFunc func(path string) (*Document, error)

// Open reads and parses the PDF at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return Parse(data, filepath.Base(path))
}

// Parse extracts the text layer from raw PDF bytes.
func Parse(data []byte, name string) (*Document, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", name, err)
	}

	dims := pageDims(data)
	doc := &Document{Name: name}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		width, height := defaultPageWidth, defaultPageHeight
		if i-1 < len(dims) && dims[i-1][1] > 0 {
			width, height = dims[i-1][0], dims[i-1][1]
		} else if w, h, ok := mediaBox(page); ok {
			width, height = w, h
		}

		glyphs, err := pageGlyphs(page)
		if err != nil {
			return nil, fmt.Errorf("read page %d of %s: %w", i, name, err)
		}
		doc.Pages = append(doc.Pages, buildPage(i, width, height, glyphs))
	}
	return doc, nil
}

// pageGlyphs reads the positioned glyph runs of a page. The underlying library
// panics on some malformed content streams, so that is turned into an error.
func pageGlyphs(page pdflib.Page) (glyphs []pdflib.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()
	return page.Content().Text, nil
}

// pageDims returns [width, height] per page via pdfcpu, or nil if pdfcpu can't read the file.
func pageDims(data []byte) [][2]float64 {
	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil
	}
	out := make([][2]float64, len(dims))
	for i, d := range dims {
		out[i] = [2]float64{d.Width, d.Height}
	}
	return out
}

func mediaBox(page pdflib.Page) (float64, float64, bool) {
	box := page.V.Key("MediaBox")
	if box.Len() != 4 {
		return 0, 0, false
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
