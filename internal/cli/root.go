// Package cli implements the docsift commands using Cobra.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/docsift/internal/config"
	"github.com/spf13/cobra"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configFile string
	logLevel   string
}

// NewRootCmd builds the docsift command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "docsift",
		Short: "docsift extracts outlines from PDFs and ranks their sections for a persona",
		Long: `docsift reads the text layer of PDF documents.

It can build a title and H1-H3 outline for every PDF in a folder, rank the sections of a
document collection against a persona and a task, or serve both over HTTP.

Usage:
  docsift outline <input_dir> <output_dir> [--format json]
  docsift rank <input.json> <output.json> <pdf_dir>
  docsift serve`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.configFile, "config", "", "YAML config file (environment variables DOCSIFT_* override it)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log_level)")

	root.AddCommand(newOutlineCmd(g), newRankCmd(g), newServeCmd(g))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration and applies flag overrides.
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		if _, err := config.ParseLevel(g.logLevel); err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = g.logLevel
	}
	return cfg, nil
}

// newLogger builds the process logger. Batch commands log text to stderr so
// their outputs stay clean; the server logs JSON.
func newLogger(w io.Writer, level string, asJSON bool) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
