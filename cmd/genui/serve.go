package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zen-systems/genui/pkg/mcpserver"
	"github.com/zen-systems/genui/pkg/pipeline"
	"github.com/zen-systems/genui/pkg/server"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if a.log.GetLevel() > zerolog.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			t, shutdown, err := a.tracer(ctx)
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				Factory:        a.factory,
				Defaults:       a.models("", ""),
				Prompts:        a.prompts,
				Logger:         a.log,
				Tracer:         t,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Metrics:        a.cfg.Server.Metrics,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx, addr)
			})
			g.Go(func() error {
				<-gctx.Done()
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return shutdown(flushCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			a.log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve generate_ui and analyze_content as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc := mcpserver.NewService(mcpserver.Options{
				Factory:  a.factory,
				Defaults: a.models("", ""),
				Prompts:  a.prompts,
				Logger:   a.log,
				Resolve: func(designModel, uiModel string) *pipeline.ModelsConfig {
					models := a.models(designModel, uiModel)
					return &models
				},
			})
			return mcpserver.RunStdio(ctx, svc, version)
		},
	}
}
