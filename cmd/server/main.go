package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/opencanoetiming/c123-scoring/internal/config"
	"github.com/opencanoetiming/c123-scoring/internal/console"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
	"github.com/opencanoetiming/c123-scoring/internal/mcp"
	"github.com/opencanoetiming/c123-scoring/internal/sqlite"
	"gopkg.in/natefinch/lumberjack.v2"
)

var version = "0.1.0"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "env file error: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	if err := ensureDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scoring := console.New(console.Config{
		Store:      sqlite.NewKVStore(db),
		Logger:     logger,
		KeyPrefix:  cfg.Storage.KeyPrefix,
		WrapAround: cfg.Grid.WrapAround,
		StaleAfter: cfg.Feed.StaleAfter,
	})
	scoring.Load(ctx)

	feedClient := feed.NewClient(feed.Config{
		URL:        cfg.Feed.URL,
		RetryWait:  cfg.Feed.RetryWait,
		StaleAfter: cfg.Feed.StaleAfter,
		Logger:     logger.With("component", "feed"),
		OnUpdate: func(snap feed.Snapshot) {
			scoring.ApplySnapshot(ctx, snap)
		},
	})
	go func() {
		logger.Info("starting feed client", "url", cfg.Feed.URL)
		if err := feedClient.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("feed client stopped", "error", err)
		}
	}()

	mcpServer := mcp.NewServer(mcp.Config{
		Console: scoring,
		Version: version,
		Logger:  logger,
	})

	if cfg.Transport.Mode == config.TransportStdio {
		runStdioMode(ctx, logger, mcpServer)
	} else {
		runHTTPMode(ctx, logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}
}

// newLogger writes to a rotated file when log.path is set. Otherwise it uses
// stdout, or stderr in stdio mode to keep stdout clean for JSON-RPC.
func newLogger(cfg config.Config) (*slog.Logger, func()) {
	var w io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.Transport.Mode == config.TransportStdio {
		w = os.Stderr
	}
	if cfg.Log.Path != "" {
		if err := ensureDir(cfg.Log.Path); err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			file := &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    cfg.Log.MaxSizeMB, // MB
				MaxBackups: cfg.Log.MaxBackups,
			}
			w = file
			closeFn = func() { _ = file.Close() }
		}
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return logger, closeFn
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or ctx is cancelled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: mcp.NewHTTPHandler(mcpServer, mcp.DefaultSessionTimeout),
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(ctx, logger, httpServer)
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(ctx context.Context, logger *slog.Logger, server *http.Server) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
