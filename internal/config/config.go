// Package config loads docsift settings from defaults, an optional YAML file
// and DOCSIFT_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable; nested keys use "_" for ".",
// e.g. DOCSIFT_EMBEDDING_ENDPOINT.
const EnvPrefix = "DOCSIFT"

type Config struct {
	Port     string `mapstructure:"port"`
	APIKey   string `mapstructure:"api_key"`
	LogLevel string `mapstructure:"log_level"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Folder that /api/rank resolves document filenames against.
	PDFDir string `mapstructure:"pdf_dir"`

	Layout       LayoutConfig       `mapstructure:"layout"`
	Embedding    EmbeddingConfig    `mapstructure:"embedding"`
	CrossEncoder CrossEncoderConfig `mapstructure:"crossencoder"`
	Rank         RankConfig         `mapstructure:"rank"`
}

// LayoutConfig holds the outline thresholds, in PDF points.
type LayoutConfig struct {
	SpanMergeGap        float64 `mapstructure:"span_merge_gap"`
	HeadingMergeGap     float64 `mapstructure:"heading_merge_gap"`
	TitleMergeGap       float64 `mapstructure:"title_merge_gap"`
	KeywordTitleGap     float64 `mapstructure:"keyword_title_gap"`
	TitleMaxTop         float64 `mapstructure:"title_max_top"`
	ExcludeTitleHeading bool    `mapstructure:"exclude_title_heading"`
}

type EmbeddingConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BatchSize int           `mapstructure:"batch_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CachePath string        `mapstructure:"cache_path"` // empty disables the cache
}

type CrossEncoderConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Model     string        `mapstructure:"model"`
	RawScores bool          `mapstructure:"raw_scores"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type RankConfig struct {
	TopK           int `mapstructure:"top_k"`
	MaxRerank      int `mapstructure:"max_rerank"`
	MaxSubsections int `mapstructure:"max_subsections"`
	MaxPerDocument int `mapstructure:"max_per_document"`
}

var defaults = map[string]any{
	"port":             "8090",
	"api_key":          "",
	"log_level":        "info",
	"worker_count":     1,
	"max_queue_size":   100,
	"max_upload_bytes": int64(52428800), // 50MB
	"job_ttl":          time.Hour,
	"pdf_dir":          "pdfs",

	"layout.span_merge_gap":        3.0,
	"layout.heading_merge_gap":     5.0,
	"layout.title_merge_gap":       30.0,
	"layout.keyword_title_gap":     50.0,
	"layout.title_max_top":         300.0,
	"layout.exclude_title_heading": false,

	"embedding.endpoint":   "http://localhost:8003/v1",
	"embedding.api_key":    "",
	"embedding.model":      "multi-qa-mpnet-base-dot-v1",
	"embedding.batch_size": 32,
	"embedding.timeout":    60 * time.Second,
	"embedding.cache_path": "",

	"crossencoder.endpoint":   "http://localhost:8004",
	"crossencoder.model":      "cross-encoder/ms-marco-MiniLM-L-12-v2",
	"crossencoder.raw_scores": true,
	"crossencoder.timeout":    60 * time.Second,

	"rank.top_k":            10,
	"rank.max_rerank":       5,
	"rank.max_subsections":  2,
	"rank.max_per_document": 0,
}

// Load reads configuration. path may be empty, in which case only defaults and
// the environment apply.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks settings shared by every command.
func (c Config) Validate() error {
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker_count must be positive, got %d", c.WorkerCount)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max_queue_size must be positive, got %d", c.MaxQueueSize)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("job_ttl must be positive, got %s", c.JobTTL)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize)
	}
	if c.Rank.TopK <= 0 || c.Rank.MaxRerank <= 0 {
		return fmt.Errorf("rank.top_k and rank.max_rerank must be positive")
	}
	if c.Rank.MaxSubsections < 0 || c.Rank.MaxPerDocument < 0 {
		return fmt.Errorf("rank.max_subsections and rank.max_per_document must not be negative")
	}
	l := c.Layout
	for name, gap := range map[string]float64{
		"layout.span_merge_gap":    l.SpanMergeGap,
		"layout.heading_merge_gap": l.HeadingMergeGap,
		"layout.title_merge_gap":   l.TitleMergeGap,
		"layout.keyword_title_gap": l.KeywordTitleGap,
		"layout.title_max_top":     l.TitleMaxTop,
	} {
		if gap < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, gap)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateServer checks the extra settings `serve` needs.
func (c Config) ValidateServer() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s_API_KEY is required", EnvPrefix)
	}
	return nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}
