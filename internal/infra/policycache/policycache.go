package policycache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
)

// Cache keeps tenant policies in memory for a bounded time. Settings
// handlers call Invalidate after writing a barbershop.
type Cache struct {
	next  domain.PolicyConfig
	cache *expirable.LRU[uint, domain.BusinessPolicy]
}

func New(next domain.PolicyConfig, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 256
	}
	return &Cache{
		next:  next,
		cache: expirable.NewLRU[uint, domain.BusinessPolicy](size, nil, ttl),
	}
}

func (c *Cache) ForTenant(ctx context.Context, tenantID uint) (domain.BusinessPolicy, error) {
	if p, ok := c.cache.Get(tenantID); ok {
		return p, nil
	}

	p, err := c.next.ForTenant(ctx, tenantID)
	if err != nil {
		return domain.BusinessPolicy{}, err
	}

	c.cache.Add(tenantID, p)
	return p, nil
}

func (c *Cache) Invalidate(tenantID uint) {
	c.cache.Remove(tenantID)
}

func (c *Cache) Len() int {
	return c.cache.Len()
}

var _ domain.PolicyConfig = (*Cache)(nil)
