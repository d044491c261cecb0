package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/placements/internal/config"
	obsmiddleware "github.com/smallbiznis/placements/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/placements/internal/observability/metrics"
	obstracing "github.com/smallbiznis/placements/internal/observability/tracing"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(mwCfg obsmiddleware.MiddlewareConfig, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	mwCfg.ErrorClassifier = classifyErrorForLog

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(mwCfg))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// queryLimiter throttles the query endpoints per caller.
type queryLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, endpoint, caller string) (*ratelimit.Result, error)
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	placementSvc domain.Service
	queryLimiter queryLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	PlacementSvc domain.Service
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
	QueryLimiter *ratelimit.QueryLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		placementSvc: p.PlacementSvc,
		obsMetrics:   p.ObsMetrics,
	}
	if p.QueryLimiter != nil {
		s.queryLimiter = p.QueryLimiter
	}
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	placements := s.engine.Group("/placements")

	placements.POST("", s.CreatePlacement)
	placements.GET("", s.ListPlacements)
	placements.POST("/query", s.QueryRateLimit(), s.QueryPlacements)
	placements.POST("/market", s.QueryRateLimit(), s.MarketPlacements)
	placements.GET("/:id", s.GetPlacementByID)
	placements.PUT("/:id", s.ReplacePlacement)
	placements.DELETE("/:id", s.DeletePlacement)
	placements.POST("/:id/reassign", s.ReassignPlacement)
}

func (s *Server) callerHeader() string {
	if s.cfg.CallerHeader == "" {
		return config.DefaultCallerHeader
	}
	return s.cfg.CallerHeader
}
