package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

// KeyInvoicePDF is invoice:pdf:{invoice_id}:{content_hash}.
const KeyInvoicePDF = "invoice:pdf:%d:%016x"

var TTLDocument = 10 * time.Minute

// DocumentCache stores rendered documents. Implementations report a miss with
// ok == false and a nil error.
type DocumentCache interface {
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	Set(ctx context.Context, key string, body []byte) error
}

// InvoiceKey derives the cache key of a rendered invoice from the bytes the
// document is a function of, so a changed invoice never hits a stale entry.
func InvoiceKey(invoiceID int64, content []byte) string {
	return fmt.Sprintf(KeyInvoicePDF, invoiceID, xxhash.Sum64(content))
}

// redisClient is the part of *redis.Client the document cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type Redis struct {
	rdb redisClient
	ttl time.Duration
}

func NewRedis(addr string) *Redis {
	return &Redis{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		}),
		ttl: TTLDocument,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, body []byte) error {
	return r.rdb.Set(ctx, key, body, r.ttl).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error          { return nil }
