package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"medbill/m/domain"
)

type fakeSource struct {
	snap  domain.InvoiceSnapshot
	err   error
	calls int
}

func (f *fakeSource) Snapshot(_ context.Context, id int64) (domain.InvoiceSnapshot, error) {
	f.calls++
	if f.err != nil {
		return domain.InvoiceSnapshot{}, f.err
	}
	if id != f.snap.Invoice.ID {
		return domain.InvoiceSnapshot{}, domain.NotFound("invoice", id)
	}
	return f.snap, nil
}

type memCache struct {
	entries map[string][]byte
	gets    int
	sets    int
	failGet bool
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.gets++
	if m.failGet {
		return nil, false, errors.New("connection refused")
	}
	b, ok := m.entries[key]
	return b, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, body []byte) error {
	m.sets++
	m.entries[key] = body
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRenderInvoiceCachesByContent(t *testing.T) {
	src := &fakeSource{snap: sampleSnapshot()}
	mc := &memCache{entries: map[string][]byte{}}
	svc := NewService(src, mc, opts, quietLogger())
	ctx := context.Background()

	first, err := svc.RenderInvoice(ctx, 12)
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if first.Filename != "invoice_12.pdf" || first.ContentType != ContentType {
		t.Fatalf("unexpected document metadata: %+v", first.Filename)
	}
	if mc.sets != 1 {
		t.Fatalf("sets = %d, want 1", mc.sets)
	}

	second, err := svc.RenderInvoice(ctx, 12)
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if mc.sets != 1 {
		t.Fatalf("second render wrote to the cache again")
	}
	if !bytes.Equal(first.Body, second.Body) {
		t.Fatal("cached body differs from the rendered one")
	}

	// An edited invoice hashes to a different key.
	src.snap.Invoice.CustomerName = "Anita R."
	if _, err := svc.RenderInvoice(ctx, 12); err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if mc.sets != 2 || len(mc.entries) != 2 {
		t.Fatalf("sets = %d entries = %d, want 2 and 2", mc.sets, len(mc.entries))
	}
}

func TestRenderInvoiceNotFound(t *testing.T) {
	svc := NewService(&fakeSource{snap: sampleSnapshot()}, nil, opts, quietLogger())
	_, err := svc.RenderInvoice(context.Background(), 999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRenderInvoiceIgnoresCacheFailure(t *testing.T) {
	mc := &memCache{entries: map[string][]byte{}, failGet: true}
	svc := NewService(&fakeSource{snap: sampleSnapshot()}, mc, opts, quietLogger())
	doc, err := svc.RenderInvoice(context.Background(), 12)
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if !bytes.HasPrefix(doc.Body, []byte("%PDF-")) {
		t.Fatal("expected a rendered PDF despite the cache failure")
	}
}
