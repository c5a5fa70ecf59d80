// Package cache provides caching for slow upstream resources.
package cache

import (
	"context"
	"sync"
	"time"

	"inventario/internal/domain/catalog"
	"inventario/pkg/logger"
)

// ProductSource loads the master product list.
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]catalog.Product, error)
}

// DefaultProductTTL bounds how stale the cached master list may get. The
// list changes rarely within a counting cycle, while the upstream call can
// stall for tens of seconds.
const DefaultProductTTL = 5 * time.Minute

// ProductCache memoizes the master product list in front of a slow source.
// Concurrent misses collapse into one upstream call; when a refresh fails
// and a previous list exists, the stale list is served instead of the error.
type ProductCache struct {
	src ProductSource
	ttl time.Duration

	mu        sync.Mutex
	products  []catalog.Product
	fetchedAt time.Time
	loading   chan struct{}
}

// NewProductCache creates a ProductCache with the given TTL.
// A non-positive TTL falls back to DefaultProductTTL.
func NewProductCache(src ProductSource, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	return &ProductCache{src: src, ttl: ttl}
}

// FetchProducts returns the cached master list, refreshing when expired.
func (c *ProductCache) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	for {
		c.mu.Lock()
		if c.products != nil && time.Since(c.fetchedAt) < c.ttl {
			out := c.products
			c.mu.Unlock()
			return out, nil
		}
		if c.loading != nil {
			// Another caller is already refreshing; wait for it.
			loading := c.loading
			c.mu.Unlock()
			select {
			case <-loading:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		c.loading = make(chan struct{})
		c.mu.Unlock()
		break
	}

	products, err := c.src.FetchProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	close(c.loading)
	c.loading = nil

	if err != nil {
		if c.products != nil {
			logger.Warn(ctx, "product refresh failed, serving cached list",
				"age", time.Since(c.fetchedAt).String(), "error", err)
			return c.products, nil
		}
		return nil, err
	}

	c.products = products
	c.fetchedAt = time.Now()
	logger.Debug(ctx, "product list refreshed", "products", len(products))
	return products, nil
}

// Invalidate drops the cached list so the next call refreshes.
func (c *ProductCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = nil
	c.fetchedAt = time.Time{}
}
