package search

import (
	"context"
	"time"

	"github.com/ppiankov/truthcheck/internal/cache"
	"github.com/ppiankov/truthcheck/internal/model"
)

// Searcher is the evidence-lookup contract
type Searcher interface {
	Search(ctx context.Context, query string, window *model.DateRange) (model.EvidenceSet, error)
}

// CachedClient memoizes evidence sets per (query, window). Errors are never cached.
type CachedClient struct {
	next  Searcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedClient wraps next; a nil cache disables memoization
func NewCachedClient(next Searcher, c cache.Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, cache: c, ttl: ttl}
}

// Search answers from the cache when possible
func (c *CachedClient) Search(ctx context.Context, query string, window *model.DateRange) (model.EvidenceSet, error) {
	if c.cache == nil {
		return c.next.Search(ctx, query, window)
	}

	windowKey := ""
	if window != nil {
		windowKey = window.String()
	}
	key := cache.CacheKey("search", query, windowKey)

	var set model.EvidenceSet
	if cache.GetJSON(c.cache, key, &set) {
		return set, nil
	}

	set, err := c.next.Search(ctx, query, window)
	if err != nil {
		return model.EvidenceSet{}, err
	}
	_ = cache.SetJSON(c.cache, key, set, c.ttl)
	return set, nil
}
