package embed

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCache_ServesHitsFromDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "embeddings.db")
	backend := &fakeEncoder{vectors: map[string][]float32{
		"alpha": {1, 2, 3},
		"beta":  {4, 5, 6},
		"gamma": {7, 8, 9},
	}}

	cache, err := OpenCache(path, backend, testLogger())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	first, err := cache.Encode(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := cache.Encode(ctx, []string{"beta", "gamma", "alpha"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if len(backend.calls) != 2 || !reflect.DeepEqual(backend.calls[1], []string{"gamma"}) {
		t.Errorf("expected only the miss to reach the backend, got %v", backend.calls)
	}
	if !reflect.DeepEqual(first[0], second[2]) || !reflect.DeepEqual(second[1], []float32{7, 8, 9}) {
		t.Errorf("unexpected vectors: first=%v second=%v", first, second)
	}
	if n, err := cache.Len(ctx); err != nil || n != 3 {
		t.Errorf("expected 3 cached vectors, got %d (%v)", n, err)
	}
	if err := cache.Close(); err != nil {
		t.Fatal(err)
	}

	// A reopened cache keeps its entries.
	fresh := &fakeEncoder{}
	reopened, err := OpenCache(path, fresh, testLogger())
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Encode(ctx, []string{"alpha"})
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh.calls) != 0 {
		t.Errorf("expected no backend calls after reopen, got %v", fresh.calls)
	}
	if !reflect.DeepEqual(got[0], []float32{1, 2, 3}) {
		t.Errorf("unexpected cached vector %v", got[0])
	}
}

func TestCache_KeyIncludesModel(t *testing.T) {
	if cacheKey("m1", "text") == cacheKey("m2", "text") {
		t.Error("keys for different models must differ")
	}
	if cacheKey("m", "ab") == cacheKey("ma", "b") {
		t.Error("model/text boundary must be part of the key")
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	if out := decodeVector(encodeVector(in)); !reflect.DeepEqual(in, out) {
		t.Errorf("got %v, want %v", out, in)
	}
}
