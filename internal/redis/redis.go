package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/beacon/internal/model"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) *redis.Client {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
	return Rdb
}

const (
	activeKey     = "display:active"
	activeETagKey = "display:active:etag"
	fallbackKey   = "display:fallback"
)

var ErrCacheMiss = errors.New("active content not cached")

// Encoder renders the response body served for a resolution.
type Encoder func(model.ActiveContent) ([]byte, error)

// ActiveCache holds the latest response body and its ETag so every instance,
// and a restarted one, answers display polls with the same bytes. It also
// keeps the last known fallback for cold starts while the database is down.
type ActiveCache struct {
	rdb    redis.Cmdable
	encode Encoder
}

// NewActiveCache stores bodies produced by encode, or plain JSON of the
// content when encode is nil.
func NewActiveCache(rdb redis.Cmdable, encode Encoder) *ActiveCache {
	if encode == nil {
		encode = func(c model.ActiveContent) ([]byte, error) { return json.Marshal(c) }
	}
	return &ActiveCache{rdb: rdb, encode: encode}
}

// Publish stores the encoded body and its ETag atomically.
func (c *ActiveCache) Publish(ctx context.Context, content model.ActiveContent) error {
	body, err := c.encode(content)
	if err != nil {
		return fmt.Errorf("encode active content: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, activeKey, body, 0)
		p.Set(ctx, activeETagKey, ETag(body), 0)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("key", activeKey).Msg("Failed to cache active content")
		return fmt.Errorf("cache active content: %w", err)
	}
	return nil
}

// Load returns the cached body and its ETag, or ErrCacheMiss.
func (c *ActiveCache) Load(ctx context.Context) ([]byte, string, error) {
	vals, err := c.rdb.MGet(ctx, activeKey, activeETagKey).Result()
	if err != nil {
		return nil, "", fmt.Errorf("read cached active content: %w", err)
	}
	body, ok := vals[0].(string)
	if !ok {
		return nil, "", ErrCacheMiss
	}
	etag, ok := vals[1].(string)
	if !ok {
		etag = ETag([]byte(body))
	}
	return []byte(body), etag, nil
}

// SaveFallback records f, or forgets it when f is nil.
func (c *ActiveCache) SaveFallback(ctx context.Context, f *model.FallbackContent) error {
	if f == nil {
		if err := c.rdb.Del(ctx, fallbackKey).Err(); err != nil {
			log.Error().Err(err).Str("key", fallbackKey).Msg("Failed to clear cached fallback")
			return fmt.Errorf("clear cached fallback: %w", err)
		}
		return nil
	}
	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fallback: %w", err)
	}
	if err := c.rdb.Set(ctx, fallbackKey, body, 0).Err(); err != nil {
		log.Error().Err(err).Str("key", fallbackKey).Msg("Failed to cache fallback")
		return fmt.Errorf("cache fallback: %w", err)
	}
	return nil
}

// LoadFallback returns the cached fallback, or nil when none is recorded.
func (c *ActiveCache) LoadFallback(ctx context.Context) (*model.FallbackContent, error) {
	body, err := c.rdb.Get(ctx, fallbackKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached fallback: %w", err)
	}
	var f model.FallbackContent
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("decode cached fallback: %w", err)
	}
	return &f, nil
}

// ETag is a strong validator for a response body.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}
