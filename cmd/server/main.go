package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shopfabrik/catalog-import/config"
	"github.com/shopfabrik/catalog-import/internal/database"
	"github.com/shopfabrik/catalog-import/internal/handlers"
	"github.com/shopfabrik/catalog-import/internal/middleware"
	"github.com/shopfabrik/catalog-import/internal/telemetry"
	"github.com/shopfabrik/catalog-import/internal/types"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting catalog import service")

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	if err := handleInterruptedRuns(ctx, logger); err != nil {
		logger.Warn().Err(err).Msg("Failed to handle interrupted runs")
	}

	telemetryCleanup, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Server.APIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(float64(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst))
	{
		internal.GET("/health", handlers.HealthCheck)

		admin := internal.Group("/admin")
		{
			admin.POST("/import", handlers.TriggerImport)
		}

		imports := internal.Group("/imports")
		{
			imports.GET("/runs", handlers.ListImportRuns)
			imports.GET("/runs/:runId", handlers.GetImportRun)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := telemetryCleanup(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown telemetry")
	}

	logger.Info().Msg("Server exited")
}

// handleInterruptedRuns marks runs left in running state by a crashed or
// restarted process as failed. The advisory lock died with that process, so
// nothing is actually still importing.
func handleInterruptedRuns(ctx context.Context, logger *zerolog.Logger) error {
	pool := database.Pool()

	tag, err := pool.Exec(ctx, `
		UPDATE import_runs
		SET status = $1, completed_at = NOW()
		WHERE status = $2
	`, string(types.RunStatusFailed), string(types.RunStatusRunning))
	if err != nil {
		return fmt.Errorf("failed to mark interrupted runs: %w", err)
	}

	if tag.RowsAffected() > 0 {
		logger.Info().Int64("count", tag.RowsAffected()).Msg("Marked interrupted runs as failed")
	} else {
		logger.Info().Msg("No interrupted runs found")
	}
	return nil
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "catalog-import").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
