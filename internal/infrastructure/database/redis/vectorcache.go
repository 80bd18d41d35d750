package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
)

// VectorStore is the embedding-cache contract.  A cache failure is never
// fatal: Get reports a miss and Put drops the write.
type VectorStore interface {
	Get(ctx context.Context, model, text string) ([]float64, bool)
	Put(ctx context.Context, model, text string, vector []float64)
}

// VectorCache caches embedding vectors in Redis, keyed by a content hash of
// the embedded text so identical clause texts across contracts share one
// entry.
type VectorCache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
}

// NewVectorCache constructs a VectorCache.  An empty prefix defaults to
// "clauselens:"; a zero ttl stores entries without expiry.
func NewVectorCache(client *Client, log logging.Logger, prefix string, ttl time.Duration) *VectorCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if prefix == "" {
		prefix = "clauselens:"
	}
	return &VectorCache{
		client: client,
		logger: log.Named("vectorcache"),
		prefix: prefix,
		ttl:    ttl,
	}
}

// key derives the cache key from the model name and a SHA-256 digest of the
// text.
func (c *VectorCache) key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + "vec:" + model + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached vector for the text, or (nil, false) on a miss.
// A stored entry that fails to decode is treated as a miss and evicted.
func (c *VectorCache) Get(ctx context.Context, model, text string) ([]float64, bool) {
	key := c.key(model, text)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("vector cache read failed", logging.Err(err))
		return nil, false
	}

	var vector []float64
	if err := json.Unmarshal(data, &vector); err != nil || len(vector) == 0 {
		c.logger.Warn("evicting malformed cached vector",
			logging.String("code", errors.ErrCodeMalformedVector.String()),
			logging.String("key", key))
		c.client.Del(ctx, key)
		return nil, false
	}
	return vector, true
}

// Put stores the vector.  Empty vectors are never cached; write failures are
// logged and dropped.
func (c *VectorCache) Put(ctx context.Context, model, text string, vector []float64) {
	if len(vector) == 0 {
		return
	}

	data, err := json.Marshal(vector)
	if err != nil {
		c.logger.Warn("vector serialization failed", logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, c.key(model, text), data, c.ttl).Err(); err != nil {
		c.logger.Warn("vector cache write failed", logging.Err(err))
	}
}
