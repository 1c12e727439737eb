// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/zen-systems/genui/pkg/adapter"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/prompt"
)

// Options configures a Server.
type Options struct {
	Factory        *adapter.Factory
	Defaults       pipeline.ModelsConfig
	Prompts        *prompt.Registry
	Logger         zerolog.Logger
	Tracer         trace.Tracer
	AllowedOrigins []string
	Metrics        bool
}

// Server is the HTTP API. Every request gets its own orchestrator.
type Server struct {
	engine *gin.Engine
	opts   Options
	log    zerolog.Logger
}

// New creates the server and registers its routes.
func New(opts Options) *Server {
	if opts.Factory == nil {
		opts.Factory = adapter.DefaultFactory()
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.NewRegistry()
	}

	s := &Server{
		engine: gin.New(),
		opts:   opts,
		log:    opts.Logger.With().Str("component", "server").Logger(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Engine returns the gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) setupMiddleware() {
	s.engine.Use(recovery(s.log))
	s.engine.Use(requestID())
	s.engine.Use(accessLog(s.log))
	s.engine.Use(corsMiddleware(s.opts.AllowedOrigins))
	if s.opts.Metrics {
		s.engine.Use(metricsMiddleware())
	}
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.health)
	if s.opts.Metrics {
		s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := s.engine.Group("/v1")
	{
		v1.GET("/models", s.models)
		v1.POST("/generate", s.generate)
		v1.POST("/generate/stream", s.generateStream)
		v1.POST("/analyze", s.analyze)
	}
}

func (s *Server) newOrchestrator(log zerolog.Logger) *pipeline.Orchestrator {
	opts := []pipeline.Option{
		pipeline.WithFactory(s.opts.Factory),
		pipeline.WithDefaults(s.opts.Defaults),
		pipeline.WithPrompts(s.opts.Prompts),
		pipeline.WithLogger(log),
	}
	if s.opts.Tracer != nil {
		opts = append(opts, pipeline.WithTracer(s.opts.Tracer))
	}
	return pipeline.New(opts...)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
