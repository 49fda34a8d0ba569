package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"specs-archiver/internal/parser"

	"github.com/rs/zerolog/log"
)

// Walker traverses directories and collects instrument export files the
// parser can handle.
type Walker struct {
	parser *parser.XYParser
}

// NewWalker creates a Walker around the given parser.
func NewWalker(p *parser.XYParser) *Walker {
	return &Walker{parser: p}
}

// FileEntry represents a discovered file ready for parsing.
type FileEntry struct {
	Path string
	Ext  string
}

// Walk discovers all parseable files under the given root. Root may also be
// a single file.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}

	if !info.IsDir() {
		ext := strings.ToLower(filepath.Ext(root))
		if !w.parser.CanParse(ext) {
			return nil, fmt.Errorf("unsupported file type: %s", root)
		}
		return []FileEntry{{Path: root, Ext: ext}}, nil
	}

	var entries []FileEntry

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if w.parser.CanParse(ext) {
			entries = append(entries, FileEntry{Path: path, Ext: ext})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

// ParseFile parses a single discovered file.
func (w *Walker) ParseFile(entry FileEntry) ([]parser.Record, error) {
	return w.parser.Parse(entry.Path)
}
