package cli

import (
	"context"
	"errors"
	"os"

	"github.com/quarry-labs/quarry-cli/internal/adapters/driven/config/file"
	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
)

// --- Shared test doubles for CLI command tests ---

// mockSearchService returns a fixed result set.
type mockSearchService struct {
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return []domain.SearchResult{
		{
			Document: domain.Document{
				ID:    "doc-1",
				URI:   "notes/alpha.md",
				Title: "alpha.md",
			},
			Chunk:      domain.Chunk{ID: "chunk-1", Content: "alpha content"},
			Score:      0.42,
			Highlights: []string{"alpha content"},
		},
	}, nil
}

// mockSearchServiceError always fails.
type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, errors.New("engine exploded")
}

// mockIngestService returns a fixed status.
type mockIngestService struct {
	lastRoot string
	err      error
}

func (m *mockIngestService) IngestDirectory(_ context.Context, root string) (*driving.IngestStatus, error) {
	m.lastRoot = root
	if m.err != nil {
		return nil, m.err
	}
	return &driving.IngestStatus{
		Root:          root,
		FilesSeen:     5,
		FilesIngested: 3,
		FilesSkipped:  1,
		ErrorCount:    1,
	}, nil
}

func (m *mockIngestService) IngestFile(_ context.Context, _, _ string) error { return m.err }

func (m *mockIngestService) Remove(_ context.Context, _ string) error { return m.err }

func (m *mockIngestService) Status(_ context.Context) (*driving.IngestStatus, error) {
	return &driving.IngestStatus{}, nil
}

// setupTestServices swaps the package-level services for test doubles
// and returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldConfig := configStore
	oldIngest := ingestService
	oldSearch := searchService

	tempDir, err := os.MkdirTemp("", "quarry-cli-test-*")
	if err != nil {
		panic(err)
	}
	store, err := file.NewConfigStore(tempDir)
	if err != nil {
		panic(err)
	}

	configStore = store
	ingestService = &mockIngestService{}
	searchService = &mockSearchService{}

	return func() {
		configStore = oldConfig
		ingestService = oldIngest
		searchService = oldSearch
		os.RemoveAll(tempDir)
	}
}
