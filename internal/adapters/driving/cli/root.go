// Package cli implements the cobra command surface for quarry.
//
// Commands talk to the core through the driving ports. The concrete
// services are injected by the main package via SetServices before
// Execute runs; commands fail with a clear error when their service
// is missing rather than wiring anything themselves.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
)

// Build information, overridden at link time by the release build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Injected services. Nil until SetServices runs.
var (
	configStore   driven.ConfigStore
	ingestService driving.IngestService
	searchService driving.SearchService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Local-first document search",
	Long: `Quarry ingests documents from a local directory into a hybrid
keyword + semantic search index, entirely on your machine.

Point it at a directory of text, markdown, HTML, JSON, JSONL, PDF or
DOCX files, then search them with a small query language supporting
quoted phrases, field:value filters, -exclusions and OR.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the concrete service implementations.
// Called once by main before Execute.
func SetServices(cfg driven.ConfigStore, ingest driving.IngestService, search driving.SearchService) {
	configStore = cfg
	ingestService = ingest
	searchService = search
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
