package ingestion

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/oraculum/core"
)

// supportedExtensions lists the document file types the loader reads.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Loader reads plain-text documents from a directory.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a document loader.
func NewLoader() *Loader {
	return &Loader{
		logger: slog.Default().With("component", "loader"),
	}
}

// Load reads all supported documents from dir, non-recursively.
// A file that cannot be read or holds no content is skipped with a warning
// and counted in the failed total; it never aborts the load. Document IDs
// derive from the filename so re-loading an unchanged corpus yields the
// same IDs.
func (l *Loader) Load(dir string) ([]*core.Document, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading documents directory %s: %w", dir, err)
	}

	var (
		documents []*core.Document
		failed    int
	)

	for _, dirEntry := range entries {
		if dirEntry.IsDir() {
			continue
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(dirEntry.Name()))] {
			continue
		}

		path := filepath.Join(dir, dirEntry.Name())
		contents, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable document", "path", path, "err", err)
			failed++
			continue
		}

		document := &core.Document{
			Id:       core.IDFromContent(dirEntry.Name()),
			Filename: dirEntry.Name(),
			Path:     path,
			Contents: string(contents),
		}

		if err := core.ValidateDocument(document); err != nil {
			l.logger.Warn("skipping invalid document", "path", path, "err", err)
			failed++
			continue
		}

		l.logger.Debug("loaded document", "filename", document.Filename, "chars", len(document.Contents))
		documents = append(documents, document)
	}

	return documents, failed, nil
}
