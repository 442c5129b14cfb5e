package cli

import (
	"fmt"
	"os"

	"github.com/dgallion1/docsift/internal/pdftext"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/spf13/cobra"
)

func newRankCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rank <input.json> <output.json> <pdf_dir>",
		Short: "Rank the sections of a document collection for a persona and task",
		Long: `Rank reads a ranking input (persona, job_to_be_done, documents), scores every
section of the listed PDFs found in pdf_dir against the persona and task, and writes the
top sections plus their most relevant passages to output.json.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, outPath, pdfDir := args[0], args[1], args[2]

			cfg, err := g.load()
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, false)

			in, err := os.Open(inPath)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			req, err := rank.ParseRequest(in)
			in.Close()
			if err != nil {
				return err
			}

			m, err := openModels(cfg, log)
			if err != nil {
				return err
			}
			defer m.Close()

			ranker := rank.NewRanker(m.embedder, m.cross, pdftext.Open, rankOptions(cfg), log)
			result, err := ranker.Run(cmd.Context(), req, pdfDir)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := result.WriteJSON(out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			log.Info("rank complete", "output", outPath,
				"sections", len(result.ExtractedSections),
				"subsections", len(result.SubsectionAnalysis))
			return nil
		},
	}
}
