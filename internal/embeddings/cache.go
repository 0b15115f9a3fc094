package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache defines the interface for embedding cache
type Cache interface {
	// Get retrieves an embedding from cache
	Get(ctx context.Context, key string) ([]float32, bool, error)

	// Set stores an embedding in cache
	Set(ctx context.Context, key string, embedding []float32) error
}

// GenerateCacheKey creates a cache key from model and text
func GenerateCacheKey(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model + ":" + text))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// CachedClient wraps a Client with caching. Question embeddings repeat
// across QA calls, clause embeddings across detector runs.
type CachedClient struct {
	client *Client
	cache  Cache
}

// NewCachedClient creates a new cached embedding client
func NewCachedClient(client *Client, cache Cache) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
	}
}

// EmbedText generates an embedding for a single text with caching
func (c *CachedClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := GenerateCacheKey(c.client.model, text)

	if emb, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return emb, nil
	}

	emb, err := c.client.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(ctx, key, emb) // cache errors are not worth failing over

	return emb, nil
}

// GetDimension returns the embedding dimension
func (c *CachedClient) GetDimension() int {
	return c.client.GetDimension()
}

// MemoryCache is a process-local embedding cache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	emb, ok := c.entries[key]
	return emb, ok, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, embedding []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = embedding
	return nil
}

// NoOpCache is a cache that doesn't cache anything (for testing)
type NoOpCache struct{}

func (c *NoOpCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	return nil, false, nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, embedding []float32) error {
	return nil
}
