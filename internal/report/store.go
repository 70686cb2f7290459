package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists generated PDFs on local disk. Stored files are served
// back under /pdfs/ by the HTTP router.
type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore ensures the target directory exists and returns the store.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create pdf dir: %w", err)
	}
	return &FileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the document and returns its public URL. The filename is
// flattened to its base so callers cannot escape the directory.
func (s *FileStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("report: write pdf: %w", err)
	}
	return s.baseURL + "/pdfs/" + name, nil
}
