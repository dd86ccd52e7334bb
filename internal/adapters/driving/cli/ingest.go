package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Ingest documents from a directory",
	Long: `Walks a directory and ingests every supported file into the index.

Files are parsed by format (text, markdown, HTML, JSON, JSONL, PDF,
DOCX), chunked and indexed for keyword search. When an embedding
provider is configured, chunks are embedded for semantic search too.

Files the parser cannot read are skipped and counted; re-running
ingest replaces documents whose files changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	root := args[0]
	if !ingestJSON {
		cmd.Printf("Ingesting %s...\n", root)
	}

	status, err := ingestService.IngestDirectory(context.Background(), root)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println()
	cmd.Printf("  Files seen:     %d\n", status.FilesSeen)
	cmd.Printf("  Files ingested: %d\n", status.FilesIngested)
	cmd.Printf("  Files skipped:  %d\n", status.FilesSkipped)
	cmd.Printf("  Errors:         %d\n", status.ErrorCount)
	return nil
}
