package repository

import (
	"encoding/base64"
	"sync"

	"github.com/dollpublish/dollpublish/internal/apperr"
	"github.com/dollpublish/dollpublish/internal/document"
)

// MemoryRepo is an in-memory Repository used by unit tests. It keeps
// attachments decoded, like the filesystem layout does, so transport encoding errors
// surface the same way.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]map[string]*memoryEntry
}

type memoryEntry struct {
	name        string
	path        string
	extra       map[string]any
	content     string
	attachments map[string][]byte
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]map[string]*memoryEntry)}
}

func (m *MemoryRepo) Save(owner, id string, doc *document.Document) error {
	if !ValidSegment(owner) || !ValidSegment(id) {
		return apperr.Invalid("invalid owner or document id")
	}
	if err := checkMetadata(doc.Metadata.Extra); err != nil {
		return err
	}
	var attachments map[string][]byte
	if doc.Attachments != nil {
		attachments = make(map[string][]byte, len(doc.Attachments))
		for name, encoded := range doc.Attachments {
			if !ValidSegment(name) {
				return apperr.Invalid("invalid attachment name %q", name)
			}
			raw, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return apperr.Internal(err)
			}
			attachments[name] = raw
		}
	}
	extra := make(map[string]any, len(doc.Metadata.Extra))
	for k, v := range doc.Metadata.Extra {
		extra[k] = v
	}
	delete(extra, "id")

	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.store[owner]
	if !ok {
		docs = make(map[string]*memoryEntry)
		m.store[owner] = docs
	}
	prev := docs[id]
	e := &memoryEntry{name: doc.Name, path: doc.Path, extra: extra, content: doc.Content, attachments: attachments}
	// like the filesystem, a save without attachments leaves earlier ones in place
	if prev != nil && prev.attachments != nil {
		merged := make(map[string][]byte, len(prev.attachments)+len(attachments))
		for k, v := range prev.attachments {
			merged[k] = v
		}
		for k, v := range attachments {
			merged[k] = v
		}
		e.attachments = merged
	}
	docs[id] = e
	return nil
}

func (m *MemoryRepo) Load(owner, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[owner][id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	extra := make(map[string]any, len(e.extra))
	for k, v := range e.extra {
		extra[k] = v
	}
	var attachments map[string]string
	if e.attachments != nil {
		attachments = make(map[string]string, len(e.attachments))
		for k, v := range e.attachments {
			attachments[k] = base64.StdEncoding.EncodeToString(v)
		}
	}
	return &document.Document{
		Name:        e.name,
		Path:        e.path,
		Metadata:    document.Metadata{ID: id, Extra: extra},
		Content:     e.content,
		Attachments: attachments,
	}, nil
}

func (m *MemoryRepo) Delete(owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[owner][id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.store[owner], id)
	return nil
}

func (m *MemoryRepo) ReadAttachment(owner, id, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[owner][id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	b, ok := e.attachments[name]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return b, nil
}
