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

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/wayfarerhq/wayfarer/common/arangodb"
	"github.com/wayfarerhq/wayfarer/common/llm"
	"github.com/wayfarerhq/wayfarer/common/logger"
	"github.com/wayfarerhq/wayfarer/common/otel"
	"github.com/wayfarerhq/wayfarer/core/config"
	"github.com/wayfarerhq/wayfarer/internal/generator"
	"github.com/wayfarerhq/wayfarer/internal/http/middleware"
	httprouter "github.com/wayfarerhq/wayfarer/internal/http/router"
	"github.com/wayfarerhq/wayfarer/internal/service"
	"github.com/wayfarerhq/wayfarer/internal/store"
	"github.com/wayfarerhq/wayfarer/internal/task"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "wayfarer starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)

	arango, err := arangodb.New(ctx, arangodb.Config{
		URL:      cfg.ArangoDB.URL,
		Username: cfg.ArangoDB.Username,
		Password: cfg.ArangoDB.Password,
		Database: cfg.ArangoDB.Database,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to document store", "error", err)
		os.Exit(1)
	}
	defer arango.Close()

	stores := store.NewStores(arango, cfg.ArangoDB.Collection)
	if err := stores.EnsureSchema(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to prepare document store", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "document store connected", "database", cfg.ArangoDB.Database, "collection", cfg.ArangoDB.Collection)

	llmClient, err := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize llm client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm client ready", "model", llmClient.Model())

	gen := generator.New(llmClient, generator.Config{
		MaxAttempts: cfg.Generator.MaxAttempts,
		BaseBackoff: cfg.Generator.BaseBackoff,
		Timeout:     cfg.Generator.Timeout,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})

	executor := task.NewExecutor(cfg.Jobs.MaxConcurrent)
	services := service.NewServices(stores, gen, executor, cfg.Jobs)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, stores)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	// 30s leaves room for in-flight generations to reach a terminal status
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := executor.Shutdown(shutdownCtx); err != nil {
		// Stragglers keep their jobs in processing; clients see that via job-status
		slog.WarnContext(shutdownCtx, "background tasks not drained", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, stores *store.Stores) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, stores, httprouter.RouterConfig{
		ServiceVersion: cfg.OTel.ServiceVersion,
	})

	return router
}

const banner = `
██╗    ██╗ █████╗ ██╗   ██╗███████╗ █████╗ ██████╗ ███████╗██████╗
██║    ██║██╔══██╗╚██╗ ██╔╝██╔════╝██╔══██╗██╔══██╗██╔════╝██╔══██╗
██║ █╗ ██║███████║ ╚████╔╝ █████╗  ███████║██████╔╝█████╗  ██████╔╝
██║███╗██║██╔══██║  ╚██╔╝  ██╔══╝  ██╔══██║██╔══██╗██╔══╝  ██╔══██╗
╚███╔███╔╝██║  ██║   ██║   ██║     ██║  ██║██║  ██║███████╗██║  ██║
 ╚══╝╚══╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
