// Command beewatch monitors a dating-app account through a running
// Chrome session and serves a local control API with live updates.
//
// Usage:
//
//	beewatch -config beewatch.yaml            # full config
//	beewatch -browser ws://127.0.0.1:9222     # defaults plus a DevTools URL
//	beewatch -mcp                             # MCP server on stdio
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/beewatch"
	"github.com/hazyhaar/beewatch/internal/dbopen"
	"github.com/hazyhaar/beewatch/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to beewatch.yaml config file")
	dbPath := flag.String("db", "beewatch.db", "path to the SQLite database")
	addr := flag.String("addr", "127.0.0.1:8080", "HTTP listen address")
	browserURL := flag.String("browser", "", "DevTools websocket of a running Chrome")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools on stdio instead of HTTP")
	autostart := flag.Bool("autostart", false, "start a monitoring run immediately")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *dbPath, *addr, *browserURL, *mcpMode, *autostart); err != nil {
		logger.Error("beewatch: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, dbPath, addr, browserURL string, mcpMode, autostart bool) error {
	cfg := beewatch.DefaultConfig()
	if configPath != "" {
		loaded, err := beewatch.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if browserURL != "" {
		cfg.Browser.ControlURL = browserURL
	}

	db, err := dbopen.Open(dbPath, dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sinks := beewatch.SinksFromConfig(cfg.Sinks, logger)
	hub := beewatch.NewHubSink(logger)
	sinks = append(sinks, hub)

	monitor := beewatch.New(store.NewStore(db), cfg, sinks,
		beewatch.WithLogger(logger))
	defer monitor.Close(context.Background())

	if autostart {
		if err := monitor.StartRun(ctx); err != nil {
			logger.Warn("beewatch: autostart failed", "error", err)
		}
	}

	if mcpMode {
		return runMCP(ctx, logger, monitor)
	}
	return runHTTP(ctx, logger, monitor, hub, addr)
}

func runHTTP(ctx context.Context, logger *slog.Logger, monitor *beewatch.Monitor, hub *beewatch.Hub, addr string) error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	beewatch.NewAPI(monitor, hub).RegisterHTTP(r)

	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("beewatch: serving", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("beewatch: stopped")
	return nil
}

func runMCP(ctx context.Context, logger *slog.Logger, monitor *beewatch.Monitor) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "beewatch", Version: "1.0.0"}, nil)
	monitor.RegisterMCP(srv)
	logger.Info("beewatch: serving MCP on stdio")
	return srv.Run(ctx, &mcp.StdioTransport{})
}
