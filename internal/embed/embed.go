// Package embed produces unit-length text embeddings for ranking.
//
// A single Model wraps an Encoder backend and is shared by every caller in the
// process; it normalizes each vector so cosine similarity reduces to a dot product.
package embed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encoder turns texts into raw (not necessarily normalized) vectors, one per text.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// QueryText builds the text that represents a persona and its task.
func QueryText(persona, task string) string {
	return fmt.Sprintf("Persona: %s. Job: %s", strings.TrimSpace(persona), strings.TrimSpace(task))
}

// Model is the shared embedding handle.
type Model struct {
	enc     Encoder
	closers []io.Closer
}

// NewModel wraps enc. The closers are released by Close, in order.
func NewModel(enc Encoder, closers ...io.Closer) *Model {
	return &Model{enc: enc, closers: closers}
}

// Name returns the backend model name.
func (m *Model) Name() string { return m.enc.Name() }

// EmbedQuery encodes the persona/task query.
func (m *Model) EmbedQuery(ctx context.Context, persona, task string) ([]float32, error) {
	vecs, err := m.EmbedTexts(ctx, []string{QueryText(persona, task)})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vecs[0], nil
}

// EmbedTexts encodes texts in one backend call and normalizes every vector.
func (m *Model) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	raw, err := m.enc.Encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("encoder %s returned %d vectors for %d texts", m.enc.Name(), len(raw), len(texts))
	}
	out := make([][]float32, len(raw))
	for i, v := range raw {
		out[i] = Normalize(v)
	}
	return out, nil
}

// Close releases the backend resources.
func (m *Model) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
