package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/instituto-admin-api/internal/middleware"
	"github.com/noah-isme/instituto-admin-api/internal/service"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
	"github.com/noah-isme/instituto-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/instituto-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/instituto-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/instituto-admin-api/pkg/response"
)

// EngineOptions configures the middleware chain of NewEngine.
type EngineOptions struct {
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	AllowedOrigins []string
	// QuietPaths are not written to the access log.
	QuietPaths []string
}

// NewEngine builds the gin engine with recovery, request ids, access log,
// CORS and request metrics. Panics and unknown routes answer with the
// usual {success:false} envelope. /metrics is mounted when Metrics is set.
func NewEngine(opts EngineOptions) *gin.Engine {
	logr := opts.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logr.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		response.Abort(c, appErrors.ErrInternal)
	}))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, opts.QuietPaths...))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	if opts.Metrics != nil {
		r.Use(internalmiddleware.Metrics(opts.Metrics))
		r.GET("/metrics", NewMetricsHandler(opts.Metrics).Prometheus)
	}
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrRouteNotFound)
	})
	return r
}
