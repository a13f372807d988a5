package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel events are published on.
const DefaultChannel = "lyricsplit:events"

// Emitter accepts events for publication. It never blocks the caller.
type Emitter interface {
	Emit(event any)
}

// Noop drops every event. Used when Redis is not configured and in tests.
type Noop struct{}

// Emit implements Emitter as a no-op.
func (Noop) Emit(_ any) {}

// Publisher queues events and publishes them as JSON on a Redis channel
// from a single background loop.
type Publisher struct {
	rdb     *redis.Client
	channel string
	events  chan Event
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewPublisher creates a publisher on channel. An empty channel uses DefaultChannel.
func NewPublisher(rdb *redis.Client, channel string, logger *slog.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{
		rdb:     rdb,
		channel: channel,
		events:  make(chan Event, 1000),
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// Channel returns the Redis channel events go to.
func (p *Publisher) Channel() string {
	return p.channel
}

// Start runs the publish loop until ctx is cancelled or Shutdown drains the queue.
// Call it once, in its own goroutine.
func (p *Publisher) Start(ctx context.Context) {
	p.wg.Add(1)
	defer p.wg.Done()

	p.logger.Info("event publisher starting", "channel", p.channel)
	for {
		select {
		case event, ok := <-p.events:
			if !ok {
				return
			}
			p.publish(event)
		case <-ctx.Done():
			p.logger.Info("event publisher stopping")
			return
		}
	}
}

// Shutdown stops accepting events and publishes what is still queued.
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.shutdownMu.Lock()
	if p.shutdown {
		p.shutdownMu.Unlock()
		return nil
	}
	p.shutdown = true
	close(p.events)
	p.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		// Start may have exited on ctx before the channel was closed.
		for event := range p.events {
			p.publish(event)
		}
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("event publisher drained")
	case <-ctx.Done():
		p.logger.Warn("event publisher drain timeout, some events may be lost")
	}
	return nil
}

// Emit queues an event. Events of an unknown type, events after shutdown and
// events that do not fit in the queue are dropped.
func (p *Publisher) Emit(event any) {
	evt, ok := event.(Event)
	if !ok {
		p.logger.Error("invalid event type emitted")
		return
	}

	// Hold the read lock through the send so Shutdown cannot close the channel mid-send.
	p.shutdownMu.RLock()
	defer p.shutdownMu.RUnlock()
	if p.shutdown {
		return
	}

	select {
	case p.events <- evt:
	default:
		p.logger.Error("event queue full, dropping event", "event_type", string(evt.Type))
	}
}

func (p *Publisher) publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "event_type", string(event.Type), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, string(data)).Err(); err != nil {
		p.logger.Warn("failed to publish event", "event_type", string(event.Type), "error", err)
	}
}
