// Package pdf extracts text from PDF files via the poppler pdftotext tool.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// ErrPDFToolNotFound indicates the pdftotext binary is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// CommandRunner executes an external command and returns its stdout.
// Abstracted so tests can inject fake output without a real binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands through os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor converts PDF bytes to plain text using pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor using the system pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract converts PDF content to plain text.
// The content is written to a temporary file because pdftotext reads
// from a path, not stdin; "-" directs the text output to stdout.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}

	if err := e.CheckAvailable(); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp("", "quarry-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	output, err := e.runner.Run(ctx, "pdftotext", "-layout", "-nopgbrk", tmpFile.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// CheckAvailable reports whether pdftotext is on PATH.
func (e *Extractor) CheckAvailable() error {
	return CheckAvailable()
}

// CheckAvailable reports whether pdftotext is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtractorUnavailable, ErrPDFToolNotFound)
	}
	return nil
}

// InstallInstructions returns platform-specific installation help for
// the pdftotext binary.
func InstallInstructions() string {
	return strings.Join([]string{
		"pdftotext is required for PDF ingestion. Install it with:",
		"  macOS:         brew install poppler",
		"  Debian/Ubuntu: sudo apt install poppler-utils",
		"  Fedora:        sudo dnf install poppler-utils",
	}, "\n")
}
