package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/gloss/internal/config"
	"github.com/felixgeelhaar/gloss/internal/queue"
)

// runEvents tails the analysis event queue and prints each record as a JSON
// line, for ad-hoc inspection of what the daemon is doing
func runEvents() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.Events.Enabled() {
		return fmt.Errorf("event publishing is not configured (set events.url or GLOSS_AMQP_URL)")
	}

	conn, err := queue.NewConnection(cfg.Events.URL)
	if err != nil {
		return fmt.Errorf("connect to event queue: %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(os.Stdout)
	consumer := queue.NewConsumer(conn, func(rec *queue.EventRecord) {
		if err := enc.Encode(rec); err != nil {
			fmt.Fprintf(os.Stderr, "encode event: %v\n", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "tailing %s, ctrl-c to stop\n", queue.EventQueueName)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	consumer.Stop()
	return nil
}
