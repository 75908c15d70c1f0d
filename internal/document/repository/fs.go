package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dollpublish/dollpublish/internal/apperr"
	"github.com/dollpublish/dollpublish/internal/document"
)

const (
	metadataFile   = "metadata.json"
	contentFile    = "content.md"
	attachmentsDir = "attachments"
)

// Repository persists documents per (owner, id).
type Repository interface {
	Save(owner, id string, doc *document.Document) error
	Load(owner, id string) (*document.Document, error)
	Delete(owner, id string) error
	ReadAttachment(owner, id, name string) ([]byte, error)
}

// FSRepo stores each document as a directory tree:
//
//	<root>/<owner>/<id>/metadata.json
//	<root>/<owner>/<id>/content.md
//	<root>/<owner>/<id>/attachments/<name>
//
// There is no locking. Calls on distinct (owner, id) pairs are independent; concurrent
// writes to the same pair may interleave and readers can observe a partial document.
type FSRepo struct {
	root string
}

func NewFSRepo(root string) *FSRepo {
	return &FSRepo{root: root}
}

// ValidSegment reports whether s can be used as a single path component.
func ValidSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}

// reservedKeys are metadata.json fields owned by the document itself. id is dropped on
// save and reassigned on load; name and path would be silently replaced, so they are
// refused.
var reservedKeys = []string{"name", "path"}

func checkMetadata(extra map[string]any) error {
	for _, k := range reservedKeys {
		if _, ok := extra[k]; ok {
			return apperr.Invalid("metadata key %q is reserved", k)
		}
	}
	return nil
}

func (r *FSRepo) docDir(owner, id string) (string, error) {
	if !ValidSegment(owner) || !ValidSegment(id) {
		return "", apperr.Invalid("invalid owner or document id")
	}
	return filepath.Join(r.root, owner, id), nil
}

func (r *FSRepo) Save(owner, id string, doc *document.Document) error {
	dir, err := r.docDir(owner, id)
	if err != nil {
		return err
	}
	if err := checkMetadata(doc.Metadata.Extra); err != nil {
		return err
	}
	for name := range doc.Attachments {
		if !ValidSegment(name) {
			return apperr.Invalid("invalid attachment name %q", name)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Internal(err)
	}

	b, err := EncodeMetadata(doc)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), b, 0o644); err != nil {
		return apperr.Internal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, contentFile), []byte(doc.Content), 0o644); err != nil {
		return apperr.Internal(err)
	}

	if doc.Attachments == nil {
		return nil
	}
	adir := filepath.Join(dir, attachmentsDir)
	if err := os.MkdirAll(adir, 0o755); err != nil {
		return apperr.Internal(err)
	}
	for name, encoded := range doc.Attachments {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return apperr.Internal(err)
		}
		if err := os.WriteFile(filepath.Join(adir, name), raw, 0o644); err != nil {
			return apperr.Internal(err)
		}
	}
	return nil
}

// EncodeMetadata returns the metadata.json body for doc: the metadata extras plus name
// and path. The id is never stored; it is the directory name.
func EncodeMetadata(doc *document.Document) ([]byte, error) {
	meta := make(map[string]any, len(doc.Metadata.Extra)+2)
	for k, v := range doc.Metadata.Extra {
		meta[k] = v
	}
	delete(meta, "id")
	meta["name"] = doc.Name
	meta["path"] = doc.Path
	return json.MarshalIndent(meta, "", "  ")
}

func (r *FSRepo) Load(owner, id string) (*document.Document, error) {
	dir, err := r.docDir(owner, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}

	metaBytes, err := readRequired(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}
	content, err := readRequired(filepath.Join(dir, contentFile))
	if err != nil {
		return nil, err
	}

	extra, err := document.DecodeObject(metaBytes)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	name, _ := extra["name"].(string)
	path, _ := extra["path"].(string)
	delete(extra, "name")
	delete(extra, "path")
	delete(extra, "id")

	attachments, err := readAttachments(filepath.Join(dir, attachmentsDir))
	if err != nil {
		return nil, err
	}

	return &document.Document{
		Name:        name,
		Path:        path,
		Metadata:    document.Metadata{ID: id, Extra: extra},
		Content:     string(content),
		Attachments: attachments,
	}, nil
}

func (r *FSRepo) Delete(owner, id string) error {
	dir, err := r.docDir(owner, id)
	if err != nil {
		return apperr.ErrNotFound
	}
	fi, err := os.Lstat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return apperr.Internal(err)
	}
	if !fi.IsDir() {
		return apperr.ErrNotFound
	}
	if err := os.RemoveAll(dir); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (r *FSRepo) ReadAttachment(owner, id, name string) ([]byte, error) {
	dir, err := r.docDir(owner, id)
	if err != nil || !ValidSegment(name) {
		return nil, apperr.ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(dir, attachmentsDir, name))
	if err != nil {
		// a missing file, or a directory in its place, is simply not found
		return nil, apperr.ErrNotFound
	}
	return b, nil
}

// readRequired reads path, mapping absence to ErrNotFound.
func readRequired(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal(err)
	}
	return b, nil
}

// readAttachments returns nil when dir does not exist.
func readAttachments(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out[e.Name()] = base64.StdEncoding.EncodeToString(b)
	}
	return out, nil
}
