// Command quarry is a local-first document search CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/config/file"
	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/embedding/ollama"
	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/index/bleve"
	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/index/memory"
	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/storage/sqlite"
	"github.com/quarry-labs/quarry-cli/internal/adapters/driving/cli"
	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/services"
	"github.com/quarry-labs/quarry-cli/internal/extractors/docx"
	"github.com/quarry-labs/quarry-cli/internal/extractors/pdf"
	"github.com/quarry-labs/quarry-cli/internal/logger"
	"github.com/quarry-labs/quarry-cli/internal/postprocessors"
)

// Build metadata, set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// defaultMaxFileSize caps per-file reads at 10 MiB unless configured.
const defaultMaxFileSize = int64(10 * 1024 * 1024)

func main() {
	cli.SetVersionInfo(version, commit, date)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best-effort: a .env in the working directory fills unset
	// environment variables such as QUARRY_EMBEDDING_API_KEY.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore(os.Getenv("QUARRY_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	dataDir := configStore.GetString("data_dir")

	docStore, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer docStore.Close()

	searchIndex, err := bleve.NewEngine(dataDir)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	defer searchIndex.Close()

	pipeline, err := buildPipeline(configStore)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	embedder := buildEmbedder(configStore)

	var vectorIndex driven.VectorIndex
	if embedder != nil {
		idx := memory.NewVectorIndex()
		if err := rebuildVectors(idx, docStore); err != nil {
			return fmt.Errorf("rebuild vector index: %w", err)
		}
		logger.Debug("Vector index rebuilt: %d vectors", idx.Len())
		vectorIndex = idx
	}

	maxFileSize := int64(configStore.GetInt("ingest.max_file_size"))
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}

	ingestService := services.NewIngestService(
		docStore, pipeline, searchIndex, vectorIndex, embedder,
		services.IngestConfig{
			MaxFileSize: maxFileSize,
			Extractors: map[domain.Format]driven.Extractor{
				domain.FormatPDF:  pdf.New(),
				domain.FormatDOCX: docx.New(),
			},
		},
	)
	searchService := services.NewSearchService(docStore, searchIndex, vectorIndex, embedder)

	cli.SetServices(configStore, ingestService, searchService)
	return cli.Execute()
}

// buildPipeline assembles the post-processing chain from config.
func buildPipeline(cfg driven.ConfigStore) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	chunkerCfg := map[string]any{}
	if size := cfg.GetInt("chunk.size"); size > 0 {
		chunkerCfg["chunk_size"] = size
	}
	if overlap := cfg.GetInt("chunk.overlap"); overlap > 0 {
		chunkerCfg["overlap"] = overlap
	}

	chunkerProc, err := registry.Build("chunker", chunkerCfg)
	if err != nil {
		return nil, err
	}
	return postprocessors.NewPipeline(chunkerProc), nil
}

// buildEmbedder returns the embedding service, or nil when no provider
// is configured. Without one, search is keyword-only.
func buildEmbedder(cfg driven.ConfigStore) driven.EmbeddingService {
	provider := cfg.GetString("embedding.provider")
	if provider == "" || provider == "none" {
		return nil
	}

	apiKey := cfg.GetString("embedding.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("QUARRY_EMBEDDING_API_KEY")
	}

	rps := float64(cfg.GetInt("embedding.rate_limit"))

	return ollama.NewEmbeddingService(ollama.Config{
		BaseURL:           cfg.GetString("embedding.base_url"),
		Model:             cfg.GetString("embedding.model"),
		Dimensions:        cfg.GetInt("embedding.dimensions"),
		RequestsPerSecond: rps,
		APIKey:            apiKey,
	})
}

// rebuildVectors loads every stored chunk embedding into the in-memory
// index. Chunks ingested before embeddings were enabled have none and
// are skipped.
func rebuildVectors(idx *memory.VectorIndex, store driven.DocumentStore) error {
	ctx := context.Background()
	chunks, err := store.AllChunks(ctx)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if err := idx.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return err
		}
	}
	return nil
}
