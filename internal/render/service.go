package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"medbill/m/domain"
	"medbill/m/internal/cache"
)

// SnapshotSource loads a consistent view of an invoice for rendering.
type SnapshotSource interface {
	Snapshot(ctx context.Context, id int64) (domain.InvoiceSnapshot, error)
}

// Document is a rendered, downloadable file.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Service struct {
	source SnapshotSource
	cache  cache.DocumentCache
	opts   Options
	log    logrus.FieldLogger
}

func NewService(source SnapshotSource, c cache.DocumentCache, opts Options, log logrus.FieldLogger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{source: source, cache: c, opts: opts, log: log}
}

// RenderInvoice produces the PDF of a stored invoice. Cache failures are logged
// and fall through to rendering.
func (s *Service) RenderInvoice(ctx context.Context, id int64) (Document, error) {
	snap, err := s.source.Snapshot(ctx, id)
	if err != nil {
		return Document{}, err
	}

	content, err := json.Marshal(struct {
		Snapshot domain.InvoiceSnapshot
		Options  Options
	}{snap, s.opts})
	if err != nil {
		return Document{}, fmt.Errorf("encode invoice %d snapshot: %w", id, err)
	}
	key := cache.InvoiceKey(id, content)

	doc := Document{Filename: Filename(id), ContentType: ContentType}
	body, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("document cache read failed")
	}
	if ok {
		doc.Body = body
		return doc, nil
	}

	body, err = Render(snap, s.opts)
	if err != nil {
		return Document{}, err
	}
	if err := s.cache.Set(ctx, key, body); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("document cache write failed")
	}
	doc.Body = body
	return doc, nil
}
