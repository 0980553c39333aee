package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

var (
	queryLimit    int
	queryFolder   string
	queryIntent   string
	queryWeight   float64
	queryKeywords []string
	queryBody     bool
	queryExplain  bool
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search notes semantically",
	Long: `Searches the notes index for the given text. Results are ranked by a
blend of semantic similarity and recency.

The freshness intent is detected from the query text ("latest ...",
"what did I originally ...") and can be forced with --intent:
  current     - strongly prefer recently modified notes
  balanced    - mild recency preference (default)
  historical  - pure similarity, no recency weighting`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 10, "maximum number of results")
	queryCmd.Flags().StringVar(&queryFolder, "folder", "", "restrict results to one folder")
	queryCmd.Flags().StringVar(&queryIntent, "intent", "", "freshness intent: current, balanced or historical")
	queryCmd.Flags().Float64Var(&queryWeight, "freshness-weight", -1, "override the freshness weight (0 to 1)")
	queryCmd.Flags().StringSliceVar(&queryKeywords, "keywords", nil, "keywords that boost matching results")
	queryCmd.Flags().BoolVar(&queryBody, "body", false, "print full note bodies instead of previews")
	queryCmd.Flags().BoolVar(&queryExplain, "explain", false, "show similarity, freshness and blended scores")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := initServices(cmd); err != nil {
		return err
	}

	intent := domain.QueryIntent(queryIntent)
	if queryIntent != "" && !intent.Valid() {
		return fmt.Errorf("unknown intent %q (want current, balanced or historical)", queryIntent)
	}

	opts := domain.QueryOptions{
		Limit:       queryLimit,
		Folder:      queryFolder,
		Intent:      intent,
		Keywords:    queryKeywords,
		IncludeBody: queryBody,
	}
	if queryWeight >= 0 {
		if queryWeight > 1 {
			return fmt.Errorf("freshness weight %v out of range [0,1]", queryWeight)
		}
		opts.FreshnessWeight = &queryWeight
	}

	results, err := queryService.Query(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}
	return outputQueryText(cmd, results)
}

func outputQueryJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, results []domain.QueryResult) error {
	if len(results) == 0 {
		cmd.Println("No matching notes.")
		return nil
	}

	for i := range results {
		rec := results[i].Record

		title := rec.Title
		if title == "" {
			title = rec.ID
		}
		cmd.Printf("[%d] %s %s\n", i+1,
			styled(styleTitle, title),
			styled(styleScore, fmt.Sprintf("(%.3f)", results[i].BlendedScore)))

		meta := rec.Folder
		if !rec.ModifiedAt.IsZero() {
			meta = fmt.Sprintf("%s · modified %s", meta, rec.ModifiedAt.Format("2006-01-02"))
		}
		cmd.Printf("    %s\n", styled(styleMeta, meta))

		if queryExplain {
			cmd.Printf("    %s\n", styled(styleMeta, fmt.Sprintf(
				"similarity=%.3f freshness=%.3f age=%.1fd boost=%.2f",
				results[i].Similarity, results[i].Freshness,
				results[i].AgeDays, results[i].KeywordBoost)))
		}

		if rec.Plaintext != "" {
			cmd.Printf("    %s\n", rec.Plaintext)
		}
		cmd.Println()
	}
	return nil
}
