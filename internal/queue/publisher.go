package queue

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

const publishTimeout = 5 * time.Second

// Sink is where published events land. *Connection is the production sink.
type Sink interface {
	PublishJSON(ctx context.Context, queue string, data any) error
}

// PublisherConfig holds publisher configuration
type PublisherConfig struct {
	Buffer int // Buffered events before Handle starts dropping
}

// DefaultPublisherConfig returns sensible defaults
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Buffer: 256,
	}
}

// Publisher forwards analysis lifecycle events to the event queue. The
// dispatcher calls handlers synchronously inside the request, so Handle never
// blocks: events are buffered and published from a background goroutine, and
// dropped with a warning when the buffer is full.
type Publisher struct {
	sink    Sink
	buf     chan domain.Event
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewPublisher creates a publisher and starts its background goroutine
func NewPublisher(sink Sink, cfg PublisherConfig) *Publisher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}

	p := &Publisher{
		sink: sink,
		buf:  make(chan domain.Event, cfg.Buffer),
		done: make(chan struct{}),
	}

	p.wg.Add(1)
	go p.drain()

	return p
}

// Handle enqueues an event for publishing. It satisfies domain.EventHandler,
// so a Publisher subscribes to a dispatcher directly:
//
//	svc.Events().SubscribeAll(pub.Handle)
func (p *Publisher) Handle(event domain.Event) {
	select {
	case p.buf <- event:
	default:
		n := p.dropped.Add(1)
		slog.Warn("event buffer full, dropping event",
			"event_type", event.EventType(),
			"dropped_total", n,
		)
	}
}

// Dropped returns how many events were discarded because the buffer was full
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops the publisher after flushing already buffered events
func (p *Publisher) Close() {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

func (p *Publisher) drain() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			// Flush what is already buffered, then stop
			for {
				select {
				case event := <-p.buf:
					p.publish(event)
				default:
					return
				}
			}
		case event := <-p.buf:
			p.publish(event)
		}
	}
}

func (p *Publisher) publish(event domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.sink.PublishJSON(ctx, EventQueueName, event); err != nil {
		slog.Warn("failed to publish event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err,
		)
		return
	}

	slog.Debug("published event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
	)
}
