package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"negotiation-gateway/internal/models"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "classifier:v1:"

// Store is the subset of the Redis wrapper the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Cache keeps classifier output keyed by utterance text. Only intents and
// entities are stored; input always comes from the live request.
type Cache struct {
	store Store
	ttl   time.Duration
}

func NewCache(store Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

type cachedResult struct {
	Intents  []models.Intent        `json:"intents"`
	Entities []models.EntityMention `json:"entities"`
}

// CacheKey hashes the text so arbitrary utterances make safe keys.
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Get returns (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, text string) (*models.ClassificationResult, error) {
	raw, err := c.store.Get(ctx, CacheKey(text))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var cached cachedResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &models.ClassificationResult{Intents: cached.Intents, Entities: cached.Entities}, nil
}

func (c *Cache) Put(ctx context.Context, text string, res *models.ClassificationResult) error {
	data, err := json.Marshal(cachedResult{Intents: res.Intents, Entities: res.Entities})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.store.Set(ctx, CacheKey(text), data, c.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
