package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"coderag/internal/adapter/chunker"
	"coderag/internal/adapter/fs"
	"coderag/internal/domain"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Print the segments produced for one file",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	seg := chunker.NewSegmenter(GetConfig().Index.MaxLines)
	unit := domain.SourceUnit{Path: path, Language: chunker.LanguageTag(path), Content: content}
	segments := seg.SegmentUnit(unit)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: family %s, %d segments\n", path, chunker.FamilyForPath(path), len(segments))
	for _, s := range segments {
		fmt.Fprintf(out, "\n--- segment %d ---\n%s\n", s.Ordinal, s.Text)
	}
	return nil
}
