package middleware

import (
	"fmt"
	"net/http"

	"github.com/benvon/smart-planner/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// DefaultRatelimitRate applies until a rate is stored.
const DefaultRatelimitRate = "5-S"

const rateLimitKeyPrefix = "planner_ratelimit"

// NewRedisStore builds the shared limiter store on a Redis client.
func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitKeyPrefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return store, nil
}

// limitHandler wraps next with a per-client limiter at rate.
func limitHandler(store limiter.Store, rate limiter.Rate, next http.Handler, log *zap.Logger) http.Handler {
	instance := limiter.New(store, rate)
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded, slow down", log)
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			// fail open when the store is unreachable
			log.Warn("rate_limit_store_error", zap.Error(err))
			next.ServeHTTP(w, r)
		}),
	)
	return mw.Handler(next)
}
