// Package server exposes an analyzer over HTTP in the shape the analysis
// client expects, so the whole flow can run locally.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/logger"
)

const (
	defaultListen          = "127.0.0.1:8080"
	defaultAnalyzeTimeout  = 2 * time.Minute
	defaultShutdownTimeout = 10 * time.Second

	// Room for the job description and multipart framing on top of the file.
	formOverhead = 1 << 20
)

type Config struct {
	Listen          string
	AnalyzeTimeout  time.Duration
	ShutdownTimeout time.Duration
	Accept          analysis.Accept
}

type Server struct {
	cfg      Config
	engine   *gin.Engine
	analyzer analyzer.Analyzer
	metrics  *Metrics
	logger   *zap.Logger
}

// New wires the routes. A nil registry gets a private one.
func New(cfg Config, a analyzer.Analyzer, log *zap.Logger, reg *prometheus.Registry) *Server {
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = defaultAnalyzeTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	log = logger.WithAnalyzer(log, a.Name(), "")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	if cfg.Accept.MaxSize > 0 {
		engine.MaxMultipartMemory = cfg.Accept.MaxSize + formOverhead
	}

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		analyzer: a,
		metrics:  NewMetrics(reg),
		logger:   log,
	}

	engine.Use(
		requestID(),
		requestLogger(log),
		recovery(log),
		s.metrics.middleware(),
	)

	engine.POST("/analyze", s.analyze)
	engine.GET("/healthz", s.healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and shuts down gracefully once ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("analysis server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info("analysis server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
