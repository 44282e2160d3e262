package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RecordHandler handles one event record
type RecordHandler func(rec *EventRecord)

// Consumer tails the event queue and hands each record to a handler. Records
// are telemetry, so deliveries are auto-acked; a consumer that dies mid-batch
// loses those records and that is fine.
type Consumer struct {
	conn       *Connection
	handler    RecordHandler
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewConsumer creates a new event consumer
func NewConsumer(conn *Connection, handler RecordHandler) *Consumer {
	return &Consumer{
		conn:    conn,
		handler: handler,
	}
}

// Start begins consuming events
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	msgs, err := ch.Consume(
		EventQueueName,
		"",    // consumer tag (auto-generated)
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("starting event consumer", "queue", EventQueueName)

	c.wg.Add(1)
	go c.consume(ctx, msgs)

	return nil
}

func (c *Consumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				slog.Info("message channel closed")
				return
			}

			var rec EventRecord
			if err := json.Unmarshal(msg.Body, &rec); err != nil {
				slog.Error("failed to unmarshal event", "error", err)
				continue
			}

			c.handler(&rec)
		}
	}
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}
