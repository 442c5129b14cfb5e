package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docsift/internal/api"
	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/rerank"
	"github.com/dgallion1/docsift/internal/stats"
)

// outlineOptions maps the layout settings onto the stock outline options.
func outlineOptions(cfg config.Config) outline.Options {
	opts := outline.DefaultOptions()
	l := cfg.Layout
	opts.SpanMergeGap = l.SpanMergeGap
	opts.HeadingMergeGap = l.HeadingMergeGap
	opts.TitleMergeGap = l.TitleMergeGap
	opts.KeywordTitleGap = l.KeywordTitleGap
	opts.TitleMaxTop = l.TitleMaxTop
	opts.ExcludeTitleHeading = l.ExcludeTitleHeading
	return opts
}

func rankOptions(cfg config.Config) rank.Options {
	return rank.Options{
		TopK:           cfg.Rank.TopK,
		MaxRerank:      cfg.Rank.MaxRerank,
		MaxSubsections: cfg.Rank.MaxSubsections,
		MaxPerDocument: cfg.Rank.MaxPerDocument,
	}
}

// models holds the model handles one process shares across rank runs.
type models struct {
	embedder *embed.Model
	cross    *rerank.Client
	stats    []api.ModelStat
}

// openModels builds the embedding model (optionally behind the SQLite cache)
// and the cross-encoder client.
func openModels(cfg config.Config, log *slog.Logger) (*models, error) {
	embLatency := stats.NewLatency(time.Hour)
	crossLatency := stats.NewLatency(time.Hour)

	enc := embed.NewOpenAIEncoder(embed.OpenAIConfig{
		Endpoint:  cfg.Embedding.Endpoint,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		BatchSize: cfg.Embedding.BatchSize,
		Timeout:   cfg.Embedding.Timeout,
	}, embLatency, log.With("component", "embedding"))

	var m *embed.Model
	if cfg.Embedding.CachePath != "" {
		cache, err := embed.OpenCache(cfg.Embedding.CachePath, enc, log.With("component", "embedding_cache"))
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
		m = embed.NewModel(cache, cache, enc)
	} else {
		m = embed.NewModel(enc, enc)
	}

	cross := rerank.NewClient(rerank.Config{
		Endpoint:  cfg.CrossEncoder.Endpoint,
		Model:     cfg.CrossEncoder.Model,
		RawScores: cfg.CrossEncoder.RawScores,
		Timeout:   cfg.CrossEncoder.Timeout,
	}, crossLatency, log.With("component", "crossencoder"))

	return &models{
		embedder: m,
		cross:    cross,
		stats: []api.ModelStat{
			{Name: "embedding", Model: cfg.Embedding.Model, Latency: embLatency},
			{Name: "crossencoder", Model: cfg.CrossEncoder.Model, Latency: crossLatency},
		},
	}, nil
}

func (m *models) Close() error {
	err := m.embedder.Close()
	if cerr := m.cross.Close(); err == nil {
		err = cerr
	}
	return err
}
