package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
	"github.com/quarry-labs/quarry-cli/internal/parser"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestConfig holds ingest-time settings.
type IngestConfig struct {
	// MaxFileSize is the per-file byte ceiling passed to the parser.
	// Zero disables the limit.
	MaxFileSize int64

	// Extractors maps formats to extraction engines for files the
	// parser cannot decode itself (PDF, DOCX).
	Extractors map[domain.Format]driven.Extractor
}

// IngestService walks local directories and turns their files into
// stored, indexed documents.
type IngestService struct {
	docStore         driven.DocumentStore
	pipeline         driven.PostProcessorPipeline
	searchIndex      driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	cfg              IngestConfig

	// Status tracking
	mu     sync.RWMutex
	status *driving.IngestStatus
}

// NewIngestService creates a new ingest service.
// vectorIndex and embeddingService are optional - if nil, semantic
// indexing is disabled and documents are keyword-searchable only.
func NewIngestService(
	docStore driven.DocumentStore,
	pipeline driven.PostProcessorPipeline,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	cfg IngestConfig,
) *IngestService {
	return &IngestService{
		docStore:         docStore,
		pipeline:         pipeline,
		searchIndex:      searchIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		cfg:              cfg,
	}
}

// IngestDirectory walks root and ingests every regular file.
// Hidden files and directories are skipped. Per-file failures are
// counted and logged, never fatal; only a cancelled context or an
// unreadable root aborts the walk.
func (s *IngestService) IngestDirectory(ctx context.Context, root string) (*driving.IngestStatus, error) {
	if err := s.beginRun(root); err != nil {
		return nil, err
	}
	defer s.endRun()

	p, err := s.newParser(root)
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}
	absRoot := p.BaseDir()

	logger.Info("Ingesting %s", absRoot)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == absRoot {
				return err
			}
			s.count(0, 0, 0, 1)
			logger.Debug("Walk error at %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != absRoot && isHidden(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if isHidden(d.Name()) || !d.Type().IsRegular() {
			return nil
		}

		s.ingestCounted(ctx, p, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	status := s.endRun()
	logger.Info("Ingest complete: %d files seen, %d ingested, %d skipped, %d errors",
		status.FilesSeen, status.FilesIngested, status.FilesSkipped, status.ErrorCount)
	return status, nil
}

// IngestFile ingests a single file inside root. Used by the watcher
// for change events.
func (s *IngestService) IngestFile(ctx context.Context, root, path string) error {
	p, err := s.newParser(root)
	if err != nil {
		return fmt.Errorf("create parser: %w", err)
	}

	ingested, err := s.ingestOne(ctx, p, path)
	if err != nil {
		return err
	}
	if !ingested {
		logger.Debug("Nothing to ingest from %s", path)
	}
	return nil
}

// Remove deletes the document stored for uri along with its chunks and
// index entries. Removing an unknown URI is not an error.
func (s *IngestService) Remove(ctx context.Context, uri string) error {
	doc, err := s.docStore.GetDocumentByURI(ctx, uri)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	logger.Debug("Removing document %s", uri)
	return s.deleteDocument(ctx, doc.ID)
}

// Status returns a snapshot of the current or most recent run.
func (s *IngestService) Status(_ context.Context) (*driving.IngestStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == nil {
		return &driving.IngestStatus{}, nil
	}

	// Return a copy to avoid race conditions
	snapshot := *s.status
	return &snapshot, nil
}

// ingestCounted runs ingestOne for one walked file and folds the
// outcome into the run counters. Unsupported and oversize files count
// as skips; everything else that fails counts as an error.
func (s *IngestService) ingestCounted(ctx context.Context, p *parser.Parser, path string) {
	ingested, err := s.ingestOne(ctx, p, path)
	switch {
	case err == nil && ingested:
		s.count(1, 1, 0, 0)
	case err == nil:
		s.count(1, 0, 1, 0)
		logger.Debug("Skipping %s: no ingestible content", path)
	case errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrValidation):
		s.count(1, 0, 1, 0)
		logger.Debug("Skipping %s: %v", path, err)
	default:
		s.count(1, 0, 0, 1)
		logger.Debug("Failed to ingest %s: %v", path, err)
	}
}

// ingestOne handles the full pipeline for a single file: parse,
// replace any previous version at the same URI, chunk, embed, store
// and index. Returns false without error when the file holds nothing
// ingestible.
func (s *IngestService) ingestOne(ctx context.Context, p *parser.Parser, path string) (bool, error) {
	text, format, err := p.ParseFileWithFormat(ctx, path)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.BaseDir(), abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(p.BaseDir(), abs)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", path, err)
	}
	uri := filepath.ToSlash(rel)

	info, err := os.Stat(abs)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w: %w", path, domain.ErrFileOperation, err)
	}

	// Drop any previous version of this URI, including its index
	// entries. Chunk IDs are fresh each ingest, so stale entries
	// would otherwise linger.
	existing, err := s.docStore.GetDocumentByURI(ctx, uri)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("lookup existing document: %w", err)
	}
	if existing != nil {
		if err := s.deleteDocument(ctx, existing.ID); err != nil {
			return false, fmt.Errorf("replace existing document: %w", err)
		}
	}

	title := filepath.Base(abs)
	now := time.Now().UTC()
	doc := &domain.Document{
		ID:      uuid.New().String(),
		URI:     uri,
		Title:   title,
		Format:  format,
		Content: text,
		Metadata: map[string]string{
			"path":     uri,
			"title":    title,
			"format":   string(format),
			"ext":      strings.ToLower(filepath.Ext(abs)),
			"size":     strconv.FormatInt(info.Size(), 10),
			"modified": info.ModTime().UTC().Format(time.RFC3339),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return false, fmt.Errorf("post-process: %w", err)
	}

	if s.embeddingService != nil {
		for i := range chunks {
			embedding, err := s.embeddingService.Embed(ctx, chunks[i].Content)
			if err != nil {
				return false, fmt.Errorf("embed chunk: %w", err)
			}
			chunks[i].Embedding = embedding
		}
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return false, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return false, fmt.Errorf("save chunks: %w", err)
	}

	for _, chunk := range chunks {
		if err := s.searchIndex.Index(ctx, chunk); err != nil {
			return false, fmt.Errorf("index chunk: %w", err)
		}
	}

	if s.vectorIndex != nil && s.embeddingService != nil {
		for _, chunk := range chunks {
			if chunk.Embedding != nil {
				if err := s.vectorIndex.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
					return false, fmt.Errorf("add vector: %w", err)
				}
			}
		}
	}

	return true, nil
}

// deleteDocument removes a document, its chunks and all index entries.
func (s *IngestService) deleteDocument(ctx context.Context, docID string) error {
	chunks, err := s.docStore.GetChunks(ctx, docID)
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}

	if s.vectorIndex != nil {
		for _, chunk := range chunks {
			if err := s.vectorIndex.Delete(ctx, chunk.ID); err != nil {
				logger.Debug("Failed to delete vector %s: %v", chunk.ID, err)
			}
		}
	}

	for _, chunk := range chunks {
		if err := s.searchIndex.Delete(ctx, chunk.ID); err != nil {
			logger.Debug("Failed to delete search index entry %s: %v", chunk.ID, err)
		}
	}

	if err := s.docStore.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// newParser builds a parser sandboxed at root with the configured
// extractors.
func (s *IngestService) newParser(root string) (*parser.Parser, error) {
	opts := make([]parser.Option, 0, len(s.cfg.Extractors))
	for format, extractor := range s.cfg.Extractors {
		opts = append(opts, parser.WithExtractor(format, extractor))
	}
	return parser.New(parser.Config{BaseDir: root, MaxFileSize: s.cfg.MaxFileSize}, opts...)
}

// beginRun claims the single ingest slot.
func (s *IngestService) beginRun(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != nil && s.status.Running {
		return fmt.Errorf("ingest of %s already running: %w", s.status.Root, domain.ErrIngestInProgress)
	}
	s.status = &driving.IngestStatus{Root: root, Running: true}
	return nil
}

// endRun marks the active run finished and returns a snapshot. Safe to
// call more than once.
func (s *IngestService) endRun() *driving.IngestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == nil {
		return &driving.IngestStatus{}
	}
	s.status.Running = false
	snapshot := *s.status
	return &snapshot
}

// count folds one file's outcome into the live run counters.
func (s *IngestService) count(seen, ingested, skipped, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == nil {
		return
	}
	s.status.FilesSeen += seen
	s.status.FilesIngested += ingested
	s.status.FilesSkipped += skipped
	s.status.ErrorCount += failed
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
