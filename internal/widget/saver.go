package widget

import (
	"fmt"
	"os"
	"path/filepath"

	"medigenius/internal/transcript"
)

type dirSaver struct {
	dir string
}

// NewDirSaver guarda los documentos exportados dentro de dir.
func NewDirSaver(dir string) DocumentSaver {
	if dir == "" {
		dir = "."
	}
	return &dirSaver{dir: dir}
}

func (s *dirSaver) Save(doc transcript.Document) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.dir, doc.Filename)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
