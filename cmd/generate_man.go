package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newGenerateManCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate-man",
		Short: "Generate man pages for the reclaim command tree",
		Long: `Generate one roff man page per command (reclaim.1, reclaim-list.1,
reclaim-events-create.1, ...) into the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			root := cmd.Root()
			root.DisableAutoGenTag = true
			header := &doc.GenManHeader{
				Title:   "RECLAIM",
				Section: "1",
				Source:  "reclaim " + version,
				Manual:  "Reclaim CLI Manual",
			}
			if err := doc.GenManTree(root, header, outputDir); err != nil {
				return fmt.Errorf("failed to generate man pages: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Man pages written to: %s\n", outputDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "man", "Output directory")

	return cmd
}
