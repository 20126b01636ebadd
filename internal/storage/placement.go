// Package storage persists uploaded claim documents under a deterministic
// per-submission directory layout.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// fallbackName is used when an upload arrives without a file name.
const fallbackName = "archivo"

// Upload is one file attached to a submission.
type Upload struct {
	Name    string
	Content io.Reader
}

// Placement derives submission directories and writes uploads into them.
type Placement struct {
	root   string
	logger *zap.Logger
}

// NewPlacement creates a Placement rooted at the storage directory.
func NewPlacement(root string, logger *zap.Logger) *Placement {
	return &Placement{root: root, logger: logger}
}

// Root returns the storage root directory.
func (p *Placement) Root() string { return p.root }

// SubmissionDir derives the relative directory for a submission:
// uploads/<company>/<cedula>/<timestamp>. Timestamps make the directory
// unique per submission, so identical file names only ever overwrite within
// one submission's own folder.
func (p *Placement) SubmissionDir(company, cedula, timestamp string) string {
	return filepath.Join("uploads", sanitize(company), sanitize(cedula), sanitize(timestamp))
}

// Resolve joins a stored relative directory back onto the storage root.
func (p *Placement) Resolve(relDir string) string {
	return filepath.Join(p.root, relDir)
}

// SaveUploads writes each upload into the submission directory, creating
// parents as needed, and returns the written paths in input order.
func (p *Placement) SaveUploads(relDir string, uploads []Upload) ([]string, error) {
	dir := filepath.Join(p.root, relDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.logger.Error("Failed to create submission directory",
			zap.String("dir", dir), zap.Error(err))
		return nil, fmt.Errorf("failed to create submission directory: %w", err)
	}

	saved := make([]string, 0, len(uploads))
	for _, up := range uploads {
		name := sanitize(up.Name)
		if name == "" {
			name = fallbackName
		}
		dest := filepath.Join(dir, name)

		if err := writeFile(dest, up.Content); err != nil {
			p.logger.Error("Failed to save upload",
				zap.String("path", dest), zap.Error(err))
			return nil, err
		}
		saved = append(saved, dest)
	}

	p.logger.Debug("Uploads saved",
		zap.String("dir", dir), zap.Int("count", len(saved)))
	return saved, nil
}

func writeFile(dest string, content io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// sanitize strips path separators and parent references so client-supplied
// names cannot escape the submission directory.
func sanitize(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return strings.TrimSpace(name)
}
