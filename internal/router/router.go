package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/LeMizoo/bygagoos-api/internal/config"
	"github.com/LeMizoo/bygagoos-api/internal/handler"
	"github.com/LeMizoo/bygagoos-api/internal/middleware"
)

// RegisterPublic registers routes that do not require authentication: the
// health check used by load balancers and the marketing price list.  The
// price list is rate limited and fronted by the Redis response cache; rdb
// may be nil, in which case both degrade to no-ops.  The health check stays
// bare so probes never trip the limiter.
func RegisterPublic(e *echo.Echo, rdb *redis.Client, limit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	cacheCfg := config.LoadCacheConfig()
	e.GET("/v1/prices", handler.Prices, limit, middleware.NewRedisCache(cacheCfg, rdb))
}
