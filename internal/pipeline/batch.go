package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/pdftext"
	"github.com/dgallion1/docsift/internal/render"
)

// Summary reports the outcome of a directory run.
type Summary struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Failures  []string `json:"failures"`
	Outputs   []string `json:"outputs"`
}

// ListPDFs returns the names of the .pdf files directly inside dir, sorted.
// The extension match is case-insensitive.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// OutlineDir builds an outline for every PDF in in and writes one rendered
// file per PDF into out. A file that fails to parse or write is logged and
// counted; only problems with the directories themselves abort the run.
func OutlineDir(ctx context.Context, in, out string, r render.Renderer, open pdftext.OpenFunc, opts outline.Options, log *slog.Logger) (Summary, error) {
	sum := Summary{Failures: []string{}, Outputs: []string{}}

	names, err := ListPDFs(in)
	if err != nil {
		return sum, err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return sum, fmt.Errorf("create output dir: %w", err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		log := log.With("file", name)

		doc, err := open(filepath.Join(in, name))
		if err != nil {
			log.Error("open failed", "error", err)
			sum.Failed++
			sum.Failures = append(sum.Failures, name)
			continue
		}
		o := outline.Build(doc, opts)

		dst := filepath.Join(out, strings.TrimSuffix(name, filepath.Ext(name))+r.Extension())
		if err := writeRendered(dst, r, o); err != nil {
			log.Error("write failed", "path", dst, "error", err)
			sum.Failed++
			sum.Failures = append(sum.Failures, name)
			continue
		}

		sum.Processed++
		sum.Outputs = append(sum.Outputs, dst)
		log.Info("outline written", "path", dst, "headings", len(o.Outline))
	}

	log.Info("batch complete", "processed", sum.Processed, "failed", sum.Failed)
	return sum, nil
}

func writeRendered(path string, r render.Renderer, o outline.Outline) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(f, o); err != nil {
		f.Close()
		return fmt.Errorf("render: %w", err)
	}
	return f.Close()
}
