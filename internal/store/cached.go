package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cleared-dev/fincore/internal/model"
)

// Cached keeps recently loaded documents in a TTL cache in front of another
// repository. Saves write through. Cached bytes are decoded on every Load so
// callers always receive a private copy.
type Cached struct {
	next  Repository
	cache *gocache.Cache
}

// NewCached wraps next with a cache whose entries expire after ttl.
func NewCached(next Repository, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: gocache.New(ttl, 2*ttl)}
}

// Load implements Repository.
func (c *Cached) Load(ctx context.Context, tenantID string) (*model.FinanceData, error) {
	if b, ok := c.cache.Get(tenantID); ok {
		return decode(b.([]byte))
	}
	data, err := c.next.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if b, err := encode(data); err == nil {
		c.cache.SetDefault(tenantID, b)
	}
	return data, nil
}

// Save implements Repository.
func (c *Cached) Save(ctx context.Context, tenantID string, data *model.FinanceData) error {
	if err := c.next.Save(ctx, tenantID, data); err != nil {
		// The cached copy may be stale relative to the conflicting writer.
		c.cache.Delete(tenantID)
		return err
	}
	b, err := encode(data)
	if err != nil {
		c.cache.Delete(tenantID)
		return nil
	}
	c.cache.SetDefault(tenantID, b)
	return nil
}

// Invalidate drops a tenant from the cache.
func (c *Cached) Invalidate(tenantID string) {
	c.cache.Delete(tenantID)
}

// Close closes the wrapped repository when it holds resources.
func (c *Cached) Close() error {
	if cl, ok := c.next.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}
