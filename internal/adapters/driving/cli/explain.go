package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry-cli/internal/query"
)

var explainJSON bool

var explainCmd = &cobra.Command{
	Use:   "explain [query...]",
	Short: "Show how a query string is parsed",
	Long: `Parses a query string the way search does and prints the result:
the phrases, filters, exclusions and terms it found, the boolean mode,
and the derived keyword and semantic query texts.

Useful for checking why a search matches or misses.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	rawQuery := strings.Join(args, " ")
	parsed := query.Parse(rawQuery)

	if explainJSON {
		out := map[string]any{
			"original":      parsed.OriginalQuery,
			"semanticTerms": parsed.SemanticTerms,
			"phrases":       parsed.Phrases,
			"filters":       parsed.Filters,
			"excludeTerms":  parsed.ExcludeTerms,
			"booleanOp":     parsed.BooleanOp,
			"semanticQuery": query.SemanticQuery(parsed),
			"ftsQuery":      query.FTSQuery(parsed),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal query: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Query: %s\n", parsed.OriginalQuery)
	cmd.Println()
	cmd.Printf("  Boolean mode:   %s\n", parsed.BooleanOp)
	cmd.Printf("  Terms:          %s\n", formatList(parsed.SemanticTerms))
	cmd.Printf("  Phrases:        %s\n", formatList(parsed.Phrases))

	if len(parsed.Filters) == 0 {
		cmd.Printf("  Filters:        (none)\n")
	} else {
		pairs := make([]string, len(parsed.Filters))
		for i, f := range parsed.Filters {
			pairs[i] = f.Field + ":" + f.Value
		}
		cmd.Printf("  Filters:        %s\n", strings.Join(pairs, ", "))
	}
	cmd.Printf("  Exclusions:     %s\n", formatList(parsed.ExcludeTerms))
	cmd.Println()
	cmd.Printf("  Keyword query:  %s\n", orNone(query.FTSQuery(parsed)))
	cmd.Printf("  Semantic query: %s\n", orNone(query.SemanticQuery(parsed)))
	return nil
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
