package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// eventBus is the standard EventBus implementation: a buffered channel
// drained by a single worker that fans events out to matching subscriptions.
type eventBus struct {
	config EventBusConfig
	logger hclog.Logger

	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	recent        []Event
	stats         EventStats

	eventChan chan Event
	stopCh    chan struct{}
	wg        sync.WaitGroup
	started   bool
}

// NewEventBus creates a bus with the given configuration.
func NewEventBus(config EventBusConfig, logger hclog.Logger) EventBus {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultEventBusConfig().BufferSize
	}
	if config.MaxRecentEvents <= 0 {
		config.MaxRecentEvents = DefaultEventBusConfig().MaxRecentEvents
	}
	return &eventBus{
		config:        config,
		logger:        logger,
		subscriptions: make(map[string]*Subscription),
		stats:         EventStats{ByType: make(map[EventType]int64)},
	}
}

func (b *eventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return fmt.Errorf("event bus already started")
	}
	b.eventChan = make(chan Event, b.config.BufferSize)
	b.stopCh = make(chan struct{})
	b.started = true

	b.wg.Add(1)
	go b.processEvents()

	b.logger.Info("event bus started", "buffer_size", b.config.BufferSize)
	return nil
}

func (b *eventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return nil
	}
	b.started = false
	close(b.stopCh)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for event bus to stop: %w", ctx.Err())
	}
}

func (b *eventBus) Health() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.started {
		return fmt.Errorf("event bus not running")
	}
	return nil
}

func (b *eventBus) Publish(ctx context.Context, event Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	b.mu.RLock()
	started := b.started
	ch := b.eventChan
	b.mu.RUnlock()
	if !started {
		return fmt.Errorf("event bus not running")
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		b.mu.Lock()
		b.stats.TotalDropped++
		b.mu.Unlock()
		b.logger.Warn("event bus buffer full, dropping event", "type", event.Type, "source", event.Source)
		return fmt.Errorf("event bus buffer full, dropped %s", event.Type)
	}
}

func (b *eventBus) PublishAsync(event Event) {
	go func() {
		if err := b.Publish(context.Background(), event); err != nil {
			b.logger.Debug("async publish failed", "type", event.Type, "error", err)
		}
	}()
}

func (b *eventBus) Subscribe(ctx context.Context, subscriber string, filter EventFilter, handler EventHandler) (*Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("subscription handler is required")
	}
	sub := &Subscription{
		ID:         uuid.NewString(),
		Subscriber: subscriber,
		Filter:     filter,
		Handler:    handler,
		Created:    time.Now(),
	}

	b.mu.Lock()
	b.subscriptions[sub.ID] = sub
	b.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			_ = b.Unsubscribe(sub.ID)
		}()
	}

	b.logger.Debug("subscription added", "subscriber", subscriber, "id", sub.ID)
	return sub, nil
}

func (b *eventBus) Unsubscribe(subscriptionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscriptions[subscriptionID]; !ok {
		return fmt.Errorf("subscription not found: %s", subscriptionID)
	}
	delete(b.subscriptions, subscriptionID)
	return nil
}

func (b *eventBus) GetSubscriptions() []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := make([]*Subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}
	return subs
}

func (b *eventBus) RecentEvents(limit int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if limit <= 0 || limit > len(b.recent) {
		limit = len(b.recent)
	}
	out := make([]Event, 0, limit)
	for i := len(b.recent) - 1; i >= len(b.recent)-limit; i-- {
		out = append(out, b.recent[i])
	}
	return out
}

func (b *eventBus) GetStats() EventStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	stats := EventStats{
		TotalPublished: b.stats.TotalPublished,
		TotalDropped:   b.stats.TotalDropped,
		ByType:         make(map[EventType]int64, len(b.stats.ByType)),
		Subscriptions:  len(b.subscriptions),
	}
	for k, v := range b.stats.ByType {
		stats.ByType[k] = v
	}
	return stats
}

func (b *eventBus) processEvents() {
	defer b.wg.Done()
	for {
		select {
		case event := <-b.eventChan:
			b.handleEvent(event)
		case <-b.stopCh:
			// Drain anything already buffered before exiting.
			for {
				select {
				case event := <-b.eventChan:
					b.handleEvent(event)
				default:
					return
				}
			}
		}
	}
}

func (b *eventBus) handleEvent(event Event) {
	b.mu.Lock()
	b.stats.TotalPublished++
	b.stats.ByType[event.Type]++
	b.recent = append(b.recent, event)
	if len(b.recent) > b.config.MaxRecentEvents {
		b.recent = b.recent[len(b.recent)-b.config.MaxRecentEvents:]
	}
	matched := make([]*Subscription, 0)
	for _, sub := range b.subscriptions {
		if sub.Filter.Matches(event) {
			matched = append(matched, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range matched {
		b.notifySubscriber(sub, event)
	}
}

func (b *eventBus) notifySubscriber(sub *Subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "subscriber", sub.Subscriber, "type", event.Type, "panic", r)
		}
	}()

	if err := sub.Handler(event); err != nil {
		b.logger.Warn("event handler returned error", "subscriber", sub.Subscriber, "type", event.Type, "error", err)
	}

	now := time.Now()
	b.mu.Lock()
	sub.LastTriggered = &now
	sub.TriggerCount++
	b.mu.Unlock()
}

func validateEvent(event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.Source == "" {
		return fmt.Errorf("event source is required")
	}
	return nil
}
