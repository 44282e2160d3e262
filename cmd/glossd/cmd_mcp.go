package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/gloss/internal/config"
	mcpserver "github.com/felixgeelhaar/gloss/internal/mcp"
)

// runMCP serves the analyses as MCP tools on stdio for editor clients.
// stdout carries the protocol, so all logging goes to stderr.
func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Daemon.LogLevel),
	})))

	svc, err := buildTutor(cfg)
	if err != nil {
		return fmt.Errorf("build tutor service: %w", err)
	}

	mcpSrv := mcpserver.NewServer(mcpserver.Config{Tutor: svc})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return mcpSrv.ServeStdio(ctx)
}
