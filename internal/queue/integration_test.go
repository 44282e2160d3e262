//go:build integration

package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/gloss/internal/domain"
	"github.com/felixgeelhaar/gloss/internal/queue"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

// setupRabbitMQ creates a RabbitMQ container for testing
func setupRabbitMQ(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get AMQP URL: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return amqpURL, cleanup
}

func TestIntegration_Connection_ConnectAndClose(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}

	if !conn.IsConnected() {
		t.Error("expected connection to be active")
	}

	if err := conn.Close(); err != nil {
		t.Errorf("failed to close connection: %v", err)
	}
}

func TestIntegration_Connection_InvalidURL(t *testing.T) {
	_, err := queue.NewConnection("amqp://invalid:5672")
	if err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_Publisher_PublishesEvent(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	pub := queue.NewPublisher(conn, queue.DefaultPublisherConfig())

	pub.Handle(domain.NewAnalysisCompletedEvent(
		uuid.New(),
		domain.ActionExplain,
		domain.LanguagePython,
		domain.SkillBeginner,
		"claude",
		1200*time.Millisecond,
	))
	pub.Close()

	// Verify by checking queue has a message
	ch := conn.Channel()
	q, err := ch.QueueInspect(queue.EventQueueName)
	if err != nil {
		t.Fatalf("failed to inspect queue: %v", err)
	}

	if q.Messages != 1 {
		t.Errorf("expected 1 message in queue, got %d", q.Messages)
	}
}

func TestIntegration_Consumer_ReceivesEvents(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Track received records
	var mu sync.Mutex
	var received []*queue.EventRecord
	receivedCh := make(chan struct{}, 5)

	consumer := queue.NewConsumer(conn, func(rec *queue.EventRecord) {
		mu.Lock()
		received = append(received, rec)
		mu.Unlock()
		receivedCh <- struct{}{}
	})

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("failed to start consumer: %v", err)
	}
	defer consumer.Stop()

	pub := queue.NewPublisher(conn, queue.DefaultPublisherConfig())
	eventCount := 3
	for i := 0; i < eventCount; i++ {
		pub.Handle(domain.NewAnalysisCompletedEvent(
			uuid.New(),
			domain.ActionFix,
			domain.LanguageGo,
			domain.SkillAdvanced,
			"ollama",
			time.Duration(i+1)*time.Second,
		))
	}
	pub.Close()

	// Wait for all events to arrive
	for i := 0; i < eventCount; i++ {
		select {
		case <-receivedCh:
		case <-ctx.Done():
			t.Fatalf("timeout waiting for event %d", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != eventCount {
		t.Errorf("expected %d events, got %d", eventCount, len(received))
	}
	for _, rec := range received {
		if rec.Type != "analysis.completed" {
			t.Errorf("Type = %q; want analysis.completed", rec.Type)
		}
		if rec.Provider != "ollama" {
			t.Errorf("Provider = %q; want ollama", rec.Provider)
		}
	}
}

func TestIntegration_Connection_PublishJSON(t *testing.T) {
	amqpURL, cleanup := setupRabbitMQ(t)
	defer cleanup()

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	rec := queue.EventRecord{
		ID:            uuid.New(),
		Type:          "analysis.completed",
		Timestamp:     time.Now(),
		AggregateID:   uuid.New(),
		AggregateType: "Analysis",
		Action:        "practice",
		Language:      "java",
		Level:         "intermediate",
		Provider:      "openai",
		DurationMS:    900,
	}

	// Direct publish using PublishJSON
	if err := conn.PublishJSON(ctx, queue.EventQueueName, rec); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	// Verify
	ch := conn.Channel()
	q, err := ch.QueueInspect(queue.EventQueueName)
	if err != nil {
		t.Fatalf("failed to inspect queue: %v", err)
	}

	if q.Messages != 1 {
		t.Errorf("expected 1 message, got %d", q.Messages)
	}
}
