package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rendis/vizor/internal/engine"
	"github.com/rendis/vizor/internal/logging"
	"github.com/rendis/vizor/internal/query"
	"github.com/rendis/vizor/internal/render"
	"github.com/rendis/vizor/internal/renderer"
	"github.com/rendis/vizor/internal/retention"
	"github.com/rendis/vizor/internal/scene"
	"github.com/rendis/vizor/internal/session"
	"github.com/rendis/vizor/internal/store"
	"github.com/rendis/vizor/internal/streaming"
	"github.com/rendis/vizor/internal/validation"
	"github.com/rendis/vizor/internal/viewer"
	"github.com/rendis/vizor/pkg/mcp"
)

func runServe() {
	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)

	if err := serve(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serve wires the full dependency graph and blocks until the stdio
// transport closes or a shutdown signal arrives.
func serve(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(vizorDir(), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", vizorDir(), err)
	}

	// Storage.
	st, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}

	// Core services.
	hub := streaming.NewMemoryHub()
	container := scene.NewContainer()
	primary := renderer.NewGraphvizRenderer()
	registry := renderer.NewRegistry(primary, renderer.NewGenericRenderer())
	pipeline := render.NewPipeline(registry, container, hub, logger)
	sess := session.New(hub)

	runner, err := query.NewRunner()
	if err != nil {
		return fmt.Errorf("building query engines: %w", err)
	}
	validator, err := validation.NewJSONSchemaValidator()
	if err != nil {
		return fmt.Errorf("compiling request schemas: %w", err)
	}

	coord := engine.NewCoordinator(sess, pipeline, container, st, runner, primary,
		engine.Capabilities{Fullscreen: cfg.Fullscreen}, logger)

	// History retention.
	if maxAge := cfg.retentionMaxAge(); maxAge > 0 {
		sweeper, err := retention.NewSweeper(st, cfg.RetentionCron, maxAge, logger)
		if err != nil {
			return fmt.Errorf("configuring retention: %w", err)
		}
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("starting retention sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	// Viewer HTTP server.
	if cfg.Viewer {
		httpSrv := &http.Server{
			Addr: cfg.ListenAddr,
			Handler: viewer.NewServer(viewer.Deps{
				Coordinator: coord,
				Hub:         hub,
				Validator:   validator,
				Logger:      logger,
			}).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("viewer listening", "addr", cfg.ListenAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("viewer server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()
	}

	// MCP stdio transport, the primary surface. Blocks until stdin
	// closes or the context is cancelled.
	mcpSrv := mcp.NewVizorServer(mcp.VizorServerDeps{
		Coordinator: coord,
		Logger:      logger,
	})
	logger.Info("vizor ready", "session_id", sess.ID(), "version", version)
	return mcpSrv.Serve(ctx)
}

// newLogger builds the process logger. MCP owns stdout, so logs go to
// stderr as JSON with correlation attrs injected from context.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	inner := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(logging.NewCorrelationHandler(inner))
	slog.SetDefault(logger)
	return logger
}
