package cli

import (
	"fmt"

	"github.com/dgallion1/docsift/internal/pdftext"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/render"
	"github.com/spf13/cobra"
)

func newOutlineCmd(g *globals) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "outline <input_dir> <output_dir>",
		Short: "Write a title and heading outline for every PDF in a folder",
		Long: `Outline processes every *.pdf in input_dir in name order and writes one
file per document into output_dir, named after the PDF.

Examples:
  docsift outline ./input ./output
  docsift outline ./input ./output --format markdown`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			renderer, err := render.ForFormat(format)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, false)

			sum, err := pipeline.OutlineDir(cmd.Context(), args[0], args[1], renderer, pdftext.Open, outlineOptions(cfg), log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d, failed %d\n", sum.Processed, sum.Failed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", fmt.Sprintf("Output format: %v", render.Formats()))
	return cmd
}
