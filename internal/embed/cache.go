package embed

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
	key        TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	dimension  INTEGER NOT NULL,
	vector     BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_embeddings_model ON embeddings(model);
`

// Cache is a SQLite-backed Encoder decorator. Vectors are stored raw, keyed by
// model name and text, so a warm cache skips the backend entirely.
type Cache struct {
	db   *sql.DB
	next Encoder
	log  *slog.Logger
}

// OpenCache opens (or creates) the cache database at path in front of next.
func OpenCache(path string, next Encoder, log *slog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init embedding cache schema: %w", err)
	}
	return &Cache{db: db, next: next, log: log}, nil
}

func (c *Cache) Name() string { return c.next.Name() }

// Encode serves hits from the database and sends only the misses to the backend.
func (c *Cache) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.next.Name()
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var (
		missTexts []string
		missIdx   []int
	)
	for i, text := range texts {
		keys[i] = cacheKey(model, text)
		var blob []byte
		err := c.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE key = ?`, keys[i]).Scan(&blob)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			missTexts = append(missTexts, text)
			missIdx = append(missIdx, i)
		case err != nil:
			return nil, fmt.Errorf("read embedding cache: %w", err)
		default:
			out[i] = decodeVector(blob)
		}
	}

	c.log.Debug("embedding cache lookup", "model", model, "hits", len(texts)-len(missTexts), "misses", len(missTexts))
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.Encode(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("encoder %s returned %d vectors for %d texts", model, len(vecs), len(missTexts))
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cache write: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for j, vec := range vecs {
		i := missIdx[j]
		out[i] = vec
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO embeddings (key, model, dimension, vector, created_at) VALUES (?, ?, ?, ?, ?)`,
			keys[i], model, len(vec), encodeVector(vec), now,
		); err != nil {
			return nil, fmt.Errorf("write embedding cache: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit embedding cache: %w", err)
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count embedding cache: %w", err)
	}
	return n, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func encodeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

func decodeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}
