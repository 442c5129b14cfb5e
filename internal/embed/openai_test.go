package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/docsift/internal/retry"
	"github.com/dgallion1/docsift/internal/stats"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingServer answers /v1/embeddings with [len(text), index] vectors, listing
// the results in reverse order.
func embeddingServer(t *testing.T, batches *[][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model != "test-embed" {
			t.Errorf("unexpected model %q", req.Model)
		}
		*batches = append(*batches, req.Input)

		data := make([]embeddingData, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, embeddingData{Object: "embedding", Embedding: []float32{float32(len(req.Input[i])), float32(i)}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
}

func newTestEncoder(url string, batch int) *OpenAIEncoder {
	enc := NewOpenAIEncoder(OpenAIConfig{
		Endpoint:  url + "/v1/",
		APIKey:    "test",
		Model:     "test-embed",
		BatchSize: batch,
		Timeout:   5 * time.Second,
	}, stats.NewLatency(time.Hour), testLogger())
	enc.Retry = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	return enc
}

func TestOpenAIEncoder_BatchesAndOrders(t *testing.T) {
	var batches [][]string
	srv := embeddingServer(t, &batches)
	defer srv.Close()

	enc := newTestEncoder(srv.URL, 2)
	defer enc.Close()

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := enc.Encode(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 3 {
		t.Errorf("expected 3 batches, got %d: %v", len(batches), batches)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vecs))
	}
	for i, v := range vecs {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("vector %d belongs to the wrong text: %v", i, v)
		}
	}
	snap := enc.latency.Snapshot()
	if snap.Count != 3 {
		t.Errorf("expected 3 latency samples, got %d", snap.Count)
	}
	if snap.Items != 5 || snap.MaxBatch != 2 {
		t.Errorf("expected 5 items in batches of at most 2, got %+v", snap)
	}
}

func TestOpenAIEncoder_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"warming up","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []embeddingData{{Object: "embedding", Embedding: []float32{1, 2}, Index: 0}},
		})
	}))
	defer srv.Close()

	vecs, err := newTestEncoder(srv.URL, 8).Encode(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if len(vecs) != 1 || vecs[0][1] != 2 {
		t.Errorf("unexpected vectors %v", vecs)
	}
}

func TestOpenAIEncoder_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"unknown model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	if _, err := newTestEncoder(srv.URL, 8).Encode(context.Background(), []string{"hello"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
}

func TestOpenAIEncoder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []embeddingData{}})
	}))
	defer srv.Close()

	if _, err := newTestEncoder(srv.URL, 8).Encode(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error for missing vectors")
	}
}
