package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guimove/tablefit/internal/allocation"
	"github.com/guimove/tablefit/internal/config"
	"github.com/guimove/tablefit/internal/model"
	"github.com/guimove/tablefit/internal/orchestrator"
)

// Backend loads fresh snapshots and decides allocations. It is satisfied by
// *orchestrator.Orchestrator.
type Backend interface {
	CurrentSettings(ctx context.Context) (*model.Settings, error)
	LoadDays(ctx context.Context, from model.Date, days int) (*allocation.Planner, model.Date, error)
	Decide(ctx context.Context, req orchestrator.AllocationRequest) (model.Decision, error)
}

// Server exposes availability and allocation over HTTP.
type Server struct {
	backend Backend
	cfg     config.ServerConfig
	engine  *gin.Engine
}

// New builds the router. A nil metrics handler leaves /metrics unrouted.
func New(backend Backend, metrics http.Handler, cfg config.ServerConfig) *Server {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 92
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}))
	}

	s := &Server{backend: backend, cfg: cfg, engine: r}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/settings", s.getSettings)
		api.GET("/calendar", s.getCalendar)
		api.GET("/slots", s.getSlots)
		api.POST("/allocations", s.postAllocation)
	}
	return s
}

// Handler returns the HTTP handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", s.cfg.Listen).Msg("serving HTTP API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
