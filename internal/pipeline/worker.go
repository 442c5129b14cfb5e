package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/pdftext"
)

// Worker processes a single outline job.
type Worker struct {
	opts outline.Options
	log  *slog.Logger
}

func NewWorker(opts outline.Options, log *slog.Logger) *Worker {
	return &Worker{opts: opts, log: log}
}

// Process parses the uploaded PDF and builds its outline.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)

	if err := ctx.Err(); err != nil {
		job.Fail("canceled", err.Error())
		return
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := pdftext.Parse(job.FileData(), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", fmt.Sprintf("parse: %s", err))
		return
	}
	job.SetParsed(len(doc.Pages), doc.SpanCount())
	if doc.SpanCount() == 0 {
		log.Warn("no extractable text")
	}

	// Phase 2: Outline
	job.SetStatus(StatusOutlining, "outlining")
	o := outline.Build(doc, w.opts)
	job.Complete(o)
	log.Info("outline complete", "pages", len(doc.Pages), "headings", len(o.Outline), "title", o.Title)
}
