package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yndnr/sessionkit-go/internal/server/httpserver/handler"
	"github.com/yndnr/sessionkit-go/internal/telemetry/logger"
	"github.com/yndnr/sessionkit-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Handler *handler.Handler
	Logger  logger.Logger

	// Metrics, when set, is updated per request and served on /metrics.
	Metrics *metric.Registry
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg *RouterConfig) *gin.Engine {
	l := logger.OrNop(cfg.Logger)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID(), Recover(l), Audit(l, cfg.Metrics))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
	})

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	cfg.Handler.Register(r)
	return r
}
