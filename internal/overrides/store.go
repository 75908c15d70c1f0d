// Package overrides manages the per-owner files that customize the public site.
package overrides

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/dollpublish/dollpublish/internal/apperr"
	"github.com/dollpublish/dollpublish/internal/document/repository"
)

const (
	TemplateFile = "template.html"
	IndexFile    = "index.html"
)

var allowed = map[string]bool{TemplateFile: true, IndexFile: true}

// Allowed reports whether name may be read or written through the store.
func Allowed(name string) bool { return allowed[name] }

// Store reads and writes <root>/<owner>/<name> for allow-listed names.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Get returns the file contents. Names outside the allow-list are reported as not found.
func (s *Store) Get(owner, name string) ([]byte, error) {
	if !Allowed(name) || !repository.ValidSegment(owner) {
		return nil, apperr.ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(s.root, owner, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return b, nil
}

// Put replaces the file with data, creating the owner directory if needed.
func (s *Store) Put(owner, name string, data []byte) error {
	if !Allowed(name) {
		return apperr.Invalid("file %q cannot be uploaded", name)
	}
	if !repository.ValidSegment(owner) {
		return apperr.Invalid("invalid owner")
	}
	dir := filepath.Join(s.root, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Internal(err)
	}
	if err := atomic.WriteFile(filepath.Join(dir, name), bytes.NewReader(data)); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
