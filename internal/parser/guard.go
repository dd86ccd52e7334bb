package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// Guard enforces the ingest sandbox. Every requested path must resolve
// to a location inside the configured root, and the target file must
// not exceed the size ceiling. Both checks happen before any content
// is read.
type Guard struct {
	baseDir     string
	maxFileSize int64
}

// NewGuard creates a guard rooted at baseDir. A maxFileSize of zero or
// less disables the size ceiling.
func NewGuard(baseDir string, maxFileSize int64) (*Guard, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is empty: %w", domain.ErrValidation)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory %q: %w", baseDir, domain.ErrValidation)
	}
	return &Guard{baseDir: filepath.Clean(abs), maxFileSize: maxFileSize}, nil
}

// BaseDir returns the absolute sandbox root.
func (g *Guard) BaseDir() string {
	return g.baseDir
}

// Check validates path without reading its content. Relative paths are
// resolved against the sandbox root. The returned path is absolute and
// safe to open.
//
// An escaping or oversize path fails with domain.ErrValidation; a
// missing or unreadable file fails with domain.ErrFileOperation. The
// escape check runs before the stat, so nothing outside the root is
// ever touched.
func (g *Guard) Check(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is empty: %w", domain.ErrValidation)
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.baseDir, abs)
	}
	abs = filepath.Clean(abs)

	if !g.contains(abs) {
		return "", fmt.Errorf("path %q escapes ingest root %q: %w", path, g.baseDir, domain.ErrValidation)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w: %w", path, domain.ErrFileOperation, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path %q is a directory: %w", path, domain.ErrValidation)
	}
	if g.maxFileSize > 0 && info.Size() > g.maxFileSize {
		return "", fmt.Errorf("file %s is %d bytes, ceiling is %d: %w",
			path, info.Size(), g.maxFileSize, domain.ErrValidation)
	}

	return abs, nil
}

// contains reports whether abs lies inside the sandbox root.
func (g *Guard) contains(abs string) bool {
	if abs == g.baseDir {
		return false // the root itself is a directory, not a file
	}
	rel, err := filepath.Rel(g.baseDir, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
