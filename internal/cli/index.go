package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index repositories into the vector store",
	Long: `Walk each repository, split source files into segments, embed them and
upsert them into the configured collection. Without arguments the
repositories listed in the config file are indexed.

If the collection exists with a different vector size it is dropped and
recreated, unless store.recreate_on_mismatch is false.

Examples:
  coderag index                       # Index configured repositories
  coderag index /repos/a /repos/b     # Index specific directories`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()
	ctx := cmd.Context()

	roots := cfg.Repositories
	if len(args) > 0 {
		roots = args
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer st.Close()

	indexUC, err := newIndexUseCase(ctx, cfg, st, log)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Indexing segments[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	result, err := indexUC.Index(ctx, roots, func(indexed int) {
		_ = bar.Set(indexed)
	})
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nIndexing complete:\n")
	fmt.Fprintf(out, "  Collection:     %s (dimension %d)\n", cfg.Store.CollectionName, result.Dimension)
	if result.Recreated {
		fmt.Fprintf(out, "  Collection was dropped and recreated\n")
	}
	fmt.Fprintf(out, "  Files read:     %d\n", result.Files)
	fmt.Fprintf(out, "  Files failed:   %d\n", result.FilesFailed)
	fmt.Fprintf(out, "  Segments:       %d\n", result.Segments)
	fmt.Fprintf(out, "  Points indexed: %d\n", result.Indexed)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - %s\n", e)
		}
	}
	return nil
}
