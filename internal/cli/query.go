package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"coderag/internal/domain"
	"coderag/internal/usecase"
)

var (
	queryText     string
	queryTopK     int
	queryTaskType string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask a question about the indexed code",
	Long: `Embed the question, fetch the closest segments and ask the LLM with them
as context. --task-type microservice_analysis switches to the
microservice decomposition prompt.

Examples:
  coderag query -q "how are sessions stored?"
  coderag query -q "split this monolith" --task-type microservice_analysis -k 20 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", usecase.DefaultTopK, "number of segments to retrieve")
	queryCmd.Flags().StringVar(&queryTaskType, "task-type", "", "prompt variant, e.g. microservice_analysis")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer st.Close()

	queryUC, err := newQueryUseCase(ctx, cfg, st, GetLogger())
	if err != nil {
		return err
	}

	resp, err := queryUC.Query(ctx, domain.QueryRequest{
		Query:    queryText,
		TopK:     queryTopK,
		TaskType: queryTaskType,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if queryJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "%s\n", resp.Answer)
	if len(resp.Sources) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nSources:\n")
	for i, s := range resp.Sources {
		fmt.Fprintf(out, "  %d. %s/%s (score: %.3f)\n", i+1, s.RepoName, s.FilePath, s.Score)
	}
	return nil
}
