package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/docsift/internal/retry"
	"github.com/dgallion1/docsift/internal/stats"
	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig points the encoder at an OpenAI-compatible embeddings server.
type OpenAIConfig struct {
	Endpoint  string // base URL including /v1
	APIKey    string
	Model     string
	BatchSize int
	Timeout   time.Duration
}

// OpenAIEncoder calls /embeddings on an OpenAI-compatible server.
type OpenAIEncoder struct {
	client    *openai.Client
	http      *http.Client
	model     string
	batchSize int
	latency   *stats.Latency
	log       *slog.Logger

	Retry retry.Policy
}

func NewOpenAIEncoder(cfg OpenAIConfig, latency *stats.Latency, log *slog.Logger) *OpenAIEncoder {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	oc.HTTPClient = httpClient

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 32
	}
	if latency == nil {
		latency = stats.NewLatency(time.Hour)
	}
	return &OpenAIEncoder{
		client:    openai.NewClientWithConfig(oc),
		http:      httpClient,
		model:     cfg.Model,
		batchSize: batch,
		latency:   latency,
		log:       log,
		Retry:     retry.DefaultPolicy,
	}
}

func (e *OpenAIEncoder) Name() string { return e.model }

// Encode sends texts in batches and returns vectors in input order.
func (e *OpenAIEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vecs, err := e.encodeBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAIEncoder) encodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp openai.EmbeddingResponse
	err := e.Retry.Do(ctx, func(ctx context.Context) error {
		start := time.Now()
		r, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(e.model),
		})
		e.latency.Observe(start, len(texts))
		if err != nil {
			return classify(err)
		}
		resp = r
		return nil
	}, func(attempt int, err error) {
		e.log.Warn("retryable embedding error", "attempt", attempt, "batch_size", len(texts), "error", err)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding server returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vecs[d.Index] != nil {
			return nil, fmt.Errorf("embedding server returned invalid index %d", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}

// classify marks 429 and 5xx responses as retryable.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && retry.IsRetryableStatus(apiErr.HTTPStatusCode) {
		return &retry.RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && retry.IsRetryableStatus(reqErr.HTTPStatusCode) {
		return &retry.RetryableError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}

// Close releases idle connections.
func (e *OpenAIEncoder) Close() error {
	e.http.CloseIdleConnections()
	return nil
}
