package service

import (
	"context"

	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/dollpublish/dollpublish/internal/document/repository"
	"github.com/dollpublish/dollpublish/internal/idgen"
	"github.com/dollpublish/dollpublish/internal/presenter"
	"github.com/dollpublish/dollpublish/internal/render"
	"github.com/dollpublish/dollpublish/pkg/logger"
	"github.com/dollpublish/dollpublish/pkg/metrics"
)

// Mirror receives a copy of every stored document. Implementations must not be
// required for correctness: failures are logged and the request still succeeds.
type Mirror interface {
	MirrorDocument(ctx context.Context, owner, id string, doc *document.Document) error
	RemoveDocument(ctx context.Context, owner, id string) error
}

// Service implements the publishing operations used by the HTTP handlers.
type Service struct {
	repo      repository.Repository
	renderer  *render.Renderer
	presenter *presenter.Presenter
	mirror    Mirror
	newID     func() string
}

type Option func(*Service)

// WithMirror copies documents to m after each successful write.
func WithMirror(m Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithIDGenerator replaces idgen.Generate.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func New(repo repository.Repository, r *render.Renderer, p *presenter.Presenter, opts ...Option) *Service {
	s := &Service{repo: repo, renderer: r, presenter: p, newID: idgen.Generate}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Publish stores doc under the id it carries, or a freshly generated one, and returns
// its metadata with the id set.
func (s *Service) Publish(ctx context.Context, owner string, doc *document.Document) (document.Metadata, error) {
	id := doc.Metadata.ID
	if id == "" {
		id = s.newID()
	}
	return s.store(ctx, owner, id, doc, "publish")
}

// Republish stores doc at id. The id from the caller wins over any id in the payload.
func (s *Service) Republish(ctx context.Context, owner, id string, doc *document.Document) (document.Metadata, error) {
	return s.store(ctx, owner, id, doc, "republish")
}

func (s *Service) store(ctx context.Context, owner, id string, doc *document.Document, op string) (document.Metadata, error) {
	doc.Metadata.ID = id
	if err := s.repo.Save(owner, id, doc); err != nil {
		return document.Metadata{}, err
	}
	metrics.DocumentWrites.WithLabelValues(op).Inc()
	logger.Debugf("%s %s/%s", op, owner, id)

	if s.mirror != nil {
		if err := s.mirror.MirrorDocument(ctx, owner, id, doc); err != nil {
			metrics.MirrorFailures.Inc()
			logger.Warnf("mirror %s/%s: %v", owner, id, err)
		}
	}
	return doc.Metadata, nil
}

// Unpublish deletes the document and returns empty metadata.
func (s *Service) Unpublish(ctx context.Context, owner, id string) (document.Metadata, error) {
	if err := s.repo.Delete(owner, id); err != nil {
		return document.Metadata{}, err
	}
	metrics.DocumentWrites.WithLabelValues("unpublish").Inc()

	if s.mirror != nil {
		if err := s.mirror.RemoveDocument(ctx, owner, id); err != nil {
			metrics.MirrorFailures.Inc()
			logger.Warnf("mirror remove %s/%s: %v", owner, id, err)
		}
	}
	return document.Metadata{}, nil
}

func (s *Service) Detail(_ context.Context, owner, id string) (*document.Document, error) {
	return s.repo.Load(owner, id)
}

// View returns the full HTML page for a document. Only load errors are reported;
// rendering always produces a page.
func (s *Service) View(_ context.Context, owner, id string) (string, error) {
	doc, err := s.repo.Load(owner, id)
	if err != nil {
		return "", err
	}
	return s.presenter.Render(s.renderer.Render(doc), doc, owner), nil
}

// Attachment returns the raw bytes of an attachment and the content type guessed from
// its name.
func (s *Service) Attachment(_ context.Context, owner, id, name string) ([]byte, string, error) {
	b, err := s.repo.ReadAttachment(owner, id, name)
	if err != nil {
		return nil, "", err
	}
	return b, render.TypeByFilename(name), nil
}
