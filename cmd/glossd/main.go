package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/felixgeelhaar/gloss/internal/api"
	"github.com/felixgeelhaar/gloss/internal/config"
	"github.com/felixgeelhaar/gloss/internal/queue"
)

// Version is set at build time via ldflags
var Version = "dev"

const pidFileName = "glossd.pid"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "mcp":
		err = runMCP()
	case "events":
		err = runEvents()
	case "version", "-v", "--version":
		fmt.Printf("glossd %s\n", Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error("glossd error", "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`glossd - code explanation service

Usage:
  glossd [command]

Commands:
  serve           Start the HTTP daemon (default)
  mcp             Serve the analyses as MCP tools on stdio
  events          Tail the analysis event queue
  version         Print version
  help            Show this help`)
}

func runServe() error {
	glossDir, err := config.EnsureGlossDir()
	if err != nil {
		return fmt.Errorf("ensure gloss dir: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := parseLogLevel(cfg.Daemon.LogLevel)
	logFile, err := setupLogging(glossDir, logLevel)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	pidPath := filepath.Join(glossDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	svc, err := buildTutor(cfg)
	if err != nil {
		return fmt.Errorf("build tutor service: %w", err)
	}

	// Lifecycle events are optional; a missing broker only costs telemetry.
	if cfg.Events.Enabled() {
		conn, err := queue.NewConnection(cfg.Events.URL)
		if err != nil {
			slog.Warn("event queue unavailable, continuing without", "error", err)
		} else {
			publisher := queue.NewPublisher(conn, queue.DefaultPublisherConfig())
			svc.Events().SubscribeAll(publisher.Handle)
			defer conn.Close()
			defer publisher.Close()
		}
	}

	server := api.NewServer(api.ServerConfig{
		Config: cfg,
		Tutor:  svc,
		Events: svc.Events(),
	})

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	if err := server.Start(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
	return nil
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

// setupLogging writes JSON to the log file and text to stderr. stdout stays
// untouched so the mcp subcommand can own it.
func setupLogging(glossDir string, level slog.Level) (*os.File, error) {
	logPath := filepath.Join(glossDir, "logs", "glossd.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	handler := &multiHandler{
		handlers: []slog.Handler{
			slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}),
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		},
	}

	slog.SetDefault(slog.New(handler))

	return logFile, nil
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

// multiHandler logs to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
