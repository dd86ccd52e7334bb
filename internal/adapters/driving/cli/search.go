package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

var (
	searchLimit       int
	searchOffset      int
	searchJSON        bool
	searchKeywordOnly bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search ingested documents",
	Long: `Performs hybrid search across all ingested documents.
Combines keyword (BM25) and semantic (vector) search for best results.

The query language supports:
  "quoted phrases"   exact full-text matching
  field:value        filter on document metadata (path, title, format, ext)
  -term              exclude results containing term
  OR                 match any term instead of all`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchKeywordOnly, "keyword-only", false, "disable the semantic search leg")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	rawQuery := strings.Join(args, " ")
	opts := domain.SearchOptions{
		Limit:       searchLimit,
		Offset:      searchOffset,
		KeywordOnly: searchKeywordOnly,
	}

	results, err := searchService.Search(context.Background(), rawQuery, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Document.Title
		if title == "" {
			title = results[i].Document.URI
		}

		cmd.Printf("  [%d] %s (%.4f)\n", i+1, title, results[i].Score)
		if results[i].Document.URI != "" {
			cmd.Printf("      %s\n", results[i].Document.URI)
		}
		if len(results[i].Highlights) > 0 {
			cmd.Printf("      %s\n", results[i].Highlights[0])
		}
		cmd.Println()
	}
	return nil
}
