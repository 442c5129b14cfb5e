package rank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/pdftext"
	"github.com/dgallion1/docsift/internal/rerank"
	"github.com/dgallion1/docsift/internal/sections"
)

// Embedder is the shared embedding handle. *embed.Model satisfies it.
type Embedder interface {
	EmbedQuery(ctx context.Context, persona, task string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Options are the ranking limits.
type Options struct {
	TopK           int
	MaxRerank      int
	MaxSubsections int
	MaxPerDocument int
}

// DefaultOptions keeps 10 sections for re-ranking, 5 after it, and 2 lines each.
func DefaultOptions() Options {
	return Options{TopK: 10, MaxRerank: 5, MaxSubsections: 2}
}

// Ranker runs the full ranking pipeline for one request.
type Ranker struct {
	emb  Embedder
	ce   rerank.CrossEncoder
	open pdftext.OpenFunc
	opts Options
	log  *slog.Logger
}

func NewRanker(emb Embedder, ce rerank.CrossEncoder, open pdftext.OpenFunc, opts Options, log *slog.Logger) *Ranker {
	return &Ranker{emb: emb, ce: ce, open: open, opts: opts, log: log}
}

// Run ranks the sections of the request's documents found under pdfDir.
// Any model failure aborts the run.
func (r *Ranker) Run(ctx context.Context, req *Request, pdfDir string) (*Result, error) {
	log := r.log.With("persona", req.Persona.Role)
	result := &Result{
		Metadata: Metadata{
			InputDocuments: req.Filenames(),
			Persona:        req.Persona.Role,
			JobToBeDone:    req.JobToBeDone.Task,
		},
		ExtractedSections:  []ExtractedSection{},
		SubsectionAnalysis: []Subsection{},
	}

	secs, err := sections.ExtractAll(ctx, pdfDir, req.Filenames(), r.open, log)
	if err != nil {
		var docErr *sections.DocumentError
		if errors.As(err, &docErr) {
			return nil, &InputError{Field: "documents", Message: docErr.Error(), Err: docErr}
		}
		return nil, err
	}
	log.Info("sections extracted", "documents", len(req.Documents), "sections", len(secs))
	if len(secs) == 0 {
		log.Warn("no sections to rank")
		return result, nil
	}

	queryVec, err := r.emb.EmbedQuery(ctx, req.Persona.Role, req.JobToBeDone.Task)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(secs))
	for i, s := range secs {
		texts[i] = s.FullText
	}
	vecs, err := r.emb.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed sections: %w", err)
	}

	initial, err := Hybrid(secs, vecs, queryVec, r.opts.TopK, r.opts.MaxPerDocument)
	if err != nil {
		return nil, err
	}
	top, err := ReRank(ctx, r.ce, embed.QueryText(req.Persona.Role, req.JobToBeDone.Task), initial, r.opts.MaxRerank)
	if err != nil {
		return nil, err
	}
	log.Info("sections ranked", "retrieved", len(initial), "kept", len(top))

	for _, s := range top {
		result.ExtractedSections = append(result.ExtractedSections, ExtractedSection{
			Document:       s.Document,
			SectionTitle:   s.Title,
			ImportanceRank: s.ImportanceRank,
			PageNumber:     s.Page,
		})
		subs, err := Subsections(ctx, r.emb, queryVec, s, r.opts.MaxSubsections)
		if err != nil {
			return nil, err
		}
		result.SubsectionAnalysis = append(result.SubsectionAnalysis, subs...)
	}
	return result, nil
}
