package ai

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// CachedPlanningService remembers recent plans by input text so that the
// plan and analyze calls for the same message reach the backend once.
type CachedPlanningService struct {
	next   PlanningService
	cache  *expirable.LRU[string, *PlanResponse]
	logger *zap.Logger
}

// NewCachedPlanningService wraps next. A non-positive size disables caching
// and returns next unchanged.
func NewCachedPlanningService(next PlanningService, size int, ttl time.Duration, logger *zap.Logger) PlanningService {
	if size <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPlanningService{
		next:   next,
		cache:  expirable.NewLRU[string, *PlanResponse](size, nil, ttl),
		logger: logger,
	}
}

// Plan returns a cached response when one is still fresh. Failures are never cached.
func (c *CachedPlanningService) Plan(ctx context.Context, text string) (*PlanResponse, error) {
	key := cacheKey(text)
	if resp, ok := c.cache.Get(key); ok {
		c.logger.Debug("planning_cache_hit", zap.Int("text_length", len(text)))
		return resp, nil
	}
	resp, err := c.next.Plan(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, resp)
	return resp, nil
}

// Len reports the number of cached responses.
func (c *CachedPlanningService) Len() int {
	return c.cache.Len()
}

func cacheKey(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
