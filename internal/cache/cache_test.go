package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestInvoiceKey(t *testing.T) {
	a := InvoiceKey(7, []byte(`{"total":"10.00"}`))
	b := InvoiceKey(7, []byte(`{"total":"10.00"}`))
	c := InvoiceKey(7, []byte(`{"total":"12.50"}`))

	if a != b {
		t.Fatalf("same content produced different keys: %s %s", a, b)
	}
	if a == c {
		t.Fatalf("different content produced the same key: %s", a)
	}
	if !strings.HasPrefix(a, "invoice:pdf:7:") {
		t.Fatalf("unexpected key layout: %s", a)
	}
}

func TestNop(t *testing.T) {
	var c DocumentCache = Nop{}
	if err := c.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "k"); ok || err != nil {
		t.Fatalf("Get = ok %v err %v, want miss", ok, err)
	}
}

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := value.([]byte)
	if !ok {
		return redis.NewStatusResult("", errors.New("unexpected value type"))
	}
	f.data[key] = string(body)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd { return redis.NewStatusResult("PONG", nil) }

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisDocumentCache(t *testing.T) {
	fake := newFakeRedis()
	var c DocumentCache = &Redis{rdb: fake, ttl: TTLDocument}
	ctx := context.Background()
	key := InvoiceKey(3, []byte("snapshot"))

	body, ok, err := c.Get(ctx, key)
	if err != nil || ok || body != nil {
		t.Fatalf("Get on empty cache = %q ok %v err %v, want a clean miss", body, ok, err)
	}

	if err := c.Set(ctx, key, []byte("%PDF-1.3")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if fake.ttls[key] != TTLDocument {
		t.Fatalf("ttl = %v, want %v", fake.ttls[key], TTLDocument)
	}
	body, ok, err = c.Get(ctx, key)
	if err != nil || !ok || string(body) != "%PDF-1.3" {
		t.Fatalf("Get after Set = %q ok %v err %v", body, ok, err)
	}

	down := errors.New("connection refused")
	fake.getErr = down
	if _, ok, err := c.Get(ctx, key); ok || !errors.Is(err, down) {
		t.Fatalf("Get with a failing server = ok %v err %v, want %v", ok, err, down)
	}
}

func TestRedisPingAndClose(t *testing.T) {
	fake := newFakeRedis()
	r := &Redis{rdb: fake, ttl: TTLDocument}
	if err := r.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := r.Close(); err != nil || !fake.closed {
		t.Fatalf("Close = %v (closed=%v)", err, fake.closed)
	}
}
