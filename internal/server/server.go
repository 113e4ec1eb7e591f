package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelhub/inventory-server/handlers"
	"github.com/modelhub/inventory-server/internal/config"
	"github.com/modelhub/inventory-server/internal/inventory/handler"
	"github.com/modelhub/inventory-server/internal/inventory/service"
	"github.com/modelhub/inventory-server/pkg/logger"
	"github.com/modelhub/inventory-server/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// readyTimeout bounds each dependency check in /ready.
const readyTimeout = 2 * time.Second

// Deps are the collaborators the router is assembled from.
// Redis and Images are optional.
type Deps struct {
	Config  *config.Config
	Service service.Service
	// Ready reports whether the database is reachable.
	Ready  func(ctx context.Context) error
	Redis  *redis.Client
	Images handler.ImageStore
}

var startTime = time.Now()

// NewRouter builds the gin engine with middleware, inventory routes and
// operational endpoints.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), middleware.RequestID(), middleware.RequestLogger())

	// Probes and metrics are registered ahead of the limiter so they are never throttled.
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readyHandler(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	if rl := d.Config.RateLimit; rl.Enabled {
		if rl.UseRedis && d.Redis != nil {
			win := time.Duration(rl.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.Redis, rl.RPS, rl.Burst, win))
			logger.Infof("rate limiter: redis (rps=%.1f burst=%d window=%s)", rl.RPS, rl.Burst, win)
		} else {
			r.Use(middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
			logger.Infof("rate limiter: memory (rps=%.1f burst=%d)", rl.RPS, rl.Burst)
		}
	}

	handler.RegisterRoutes(r, d.Service)
	if d.Images != nil {
		handler.RegisterImageRoutes(r, d.Service, d.Images)
	} else {
		logger.Debugf("image uploads disabled: object storage not configured")
	}
	return r
}

// readyHandler returns 200 only when the database, and Redis when the
// limiter depends on it, answer a ping.
func readyHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		ready := true
		deps := map[string]bool{}

		deps["mongodb"] = d.Ready != nil && d.Ready(ctx) == nil
		if !deps["mongodb"] {
			ready = false
		}

		if d.Config.RateLimit.Enabled && d.Config.RateLimit.UseRedis {
			deps["redis"] = d.Redis != nil && d.Redis.Ping(ctx).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}
		deps["images"] = d.Images != nil

		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	}
}
