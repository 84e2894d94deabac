package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/footylabs/clubledger/internal/app"
	"github.com/footylabs/clubledger/internal/config"
	"github.com/footylabs/clubledger/internal/observability"
	"github.com/footylabs/clubledger/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, flushLogs, err := observability.InitLogShipper(cfg, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("init log shipper: %w", err)
	}
	logging.SetDefault(logger)

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logging.SlogLevel(cfg.LogLevel),
	}))

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, slogger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}

	bot, err := app.New(cfg, logger, slogger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := bot.Run(ctx)

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := bot.Close(); err != nil {
		logger.Error("close app", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Error("stop profiler", "error", err)
	}
	if err := shutdownTracing(cleanupCtx); err != nil {
		logger.Error("shutdown tracing", "error", err)
	}
	if err := flushLogs(cleanupCtx); err != nil {
		fmt.Fprintln(os.Stderr, "flush logs:", err)
	}

	if runErr != nil {
		return runErr
	}

	logger.Info("clubledger bot stopped")
	return nil
}
