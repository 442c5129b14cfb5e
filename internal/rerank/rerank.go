// Package rerank scores (query, passage) pairs with a cross-encoder served over HTTP.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/docsift/internal/retry"
	"github.com/dgallion1/docsift/internal/stats"
)

// Pair is one query/passage input to the cross-encoder.
type Pair struct {
	Query string
	Text  string
}

// CrossEncoder returns one relevance score per pair, in input order.
type CrossEncoder interface {
	Predict(ctx context.Context, pairs []Pair) ([]float64, error)
}

// Config points the client at a rerank server.
type Config struct {
	Endpoint  string
	Model     string
	RawScores bool
	Timeout   time.Duration
}

// Client calls a TEI-style POST /rerank endpoint.
type Client struct {
	endpoint   string
	model      string
	rawScores  bool
	httpClient *http.Client
	latency    *stats.Latency
	log        *slog.Logger

	Retry retry.Policy
}

func NewClient(cfg Config, latency *stats.Latency, log *slog.Logger) *Client {
	if latency == nil {
		latency = stats.NewLatency(time.Hour)
	}
	return &Client{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		model:     cfg.Model,
		rawScores: cfg.RawScores,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		latency: latency,
		log:     log,
		Retry:   retry.DefaultPolicy,
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
	Truncate  bool     `json:"truncate"`
	Model     string   `json:"model,omitempty"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Predict scores every pair. Pairs sharing a query go out in one request.
func (c *Client) Predict(ctx context.Context, pairs []Pair) ([]float64, error) {
	scores := make([]float64, len(pairs))

	var order []string
	groups := make(map[string][]int)
	for i, p := range pairs {
		if _, ok := groups[p.Query]; !ok {
			order = append(order, p.Query)
		}
		groups[p.Query] = append(groups[p.Query], i)
	}

	for _, query := range order {
		idx := groups[query]
		texts := make([]string, len(idx))
		for j, i := range idx {
			texts[j] = pairs[i].Text
		}

		var got []float64
		err := c.Retry.Do(ctx, func(ctx context.Context) error {
			var err error
			got, err = c.score(ctx, query, texts)
			return err
		}, func(attempt int, err error) {
			c.log.Warn("retryable rerank error", "attempt", attempt, "texts", len(texts), "error", err)
		})
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
		for j, i := range idx {
			scores[i] = got[j]
		}
	}
	return scores, nil
}

func (c *Client) score(ctx context.Context, query string, texts []string) ([]float64, error) {
	body, err := json.Marshal(rerankRequest{
		Query:     query,
		Texts:     texts,
		RawScores: c.rawScores,
		Truncate:  true,
		Model:     c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.latency.Observe(start, len(texts))
	if err != nil {
		return nil, fmt.Errorf("rerank api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if retry.IsRetryableStatus(resp.StatusCode) {
		return nil, &retry.RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank api status %d: %s", resp.StatusCode, string(respBody))
	}

	var results []rerankResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("rerank api returned %d scores for %d texts", len(results), len(texts))
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(texts) || seen[r.Index] {
			return nil, fmt.Errorf("rerank api returned invalid index %d", r.Index)
		}
		seen[r.Index] = true
		scores[r.Index] = r.Score
	}
	return scores, nil
}

// Close releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
