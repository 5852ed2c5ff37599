package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/internal/metrics"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/gin-gonic/gin"
)

// Server exposes a [treefs.TreeOperator] over HTTP.
type Server struct {
	tree    treefs.TreeOperator
	router  *gin.Engine
	httpSrv *http.Server
	logger  util.Logger
}

// New builds the router. m may be nil to disable metrics.
func New(cfg *config.Config, tree treefs.TreeOperator, m *metrics.Metrics) *Server {
	s := &Server{
		tree:   tree,
		router: gin.New(),
		logger: util.GetLogger("API"),
	}

	r := s.router
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog())
	if m != nil {
		r.Use(Metrics(m))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(CORS(cfg.CORSOrigins))
	}
	if cfg.RateLimitRPS > 0 {
		s.logger.Info().Int("rps", cfg.RateLimitRPS).Int("burst", cfg.RateLimitBurst).Msg("Rate limiting enabled")
		r.Use(RateLimit(RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
	}

	r.GET("/healthz", s.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	fsGroup := r.Group("/filesystem")
	fsGroup.GET("/get", s.Get)
	fsGroup.POST("/insert", s.Insert)
	fsGroup.PUT("/move", s.Move)
	fsGroup.DELETE("/remove", s.Remove)
	fsGroup.PUT("/rename", s.Rename)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          util.NewLogLogger("HTTPServer", util.ErrorLevel),
	}
	return s
}

// Handler returns the router, i.e. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A graceful [Server.Shutdown] returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("Starting HTTP server")
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeAsync runs [Server.ListenAndServe] in the background.
func (s *Server) ServeAsync() <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- s.ListenAndServe()
		close(done)
	}()

	return done
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.httpSrv.Shutdown(ctx)
}
