package chem

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventType classifies a lifecycle event emitted by a network.
type EventType string

const (
	EventReactionDiscovered   EventType = "reaction_discovered"
	EventCompartmentFormed    EventType = "compartment_formed"
	EventCompartmentDivided   EventType = "compartment_divided"
	EventCompartmentDissolved EventType = "compartment_dissolved"
)

// Event is a lifecycle notification: a reaction was discovered, or a
// compartment formed, divided, or dissolved.
type Event struct {
	NetworkID     string    `json:"network_id"`
	Type          EventType `json:"type"`
	TimeStep      int       `json:"time_step"`
	Timestamp     int64     `json:"timestamp"`
	Reaction      string    `json:"reaction,omitempty"`
	CompartmentID string    `json:"compartment_id,omitempty"`
	DaughterIDs   []string  `json:"daughter_ids,omitempty"`
	Radius        float64   `json:"radius,omitempty"`
	Stability     float64   `json:"stability,omitempty"`
}

// JSON returns the event as JSON bytes.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is a delivery channel for events.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the kind of notifier (e.g. "webhook", "websocket").
	Type() string

	// Notify delivers one event. The context carries the delivery
	// deadline.
	Notify(ctx context.Context, event Event) error

	// Close releases any resources held by the notifier.
	Close() error
}

// NotificationManager fans events out to registered notifiers. Delivery is
// asynchronous through a bounded queue with a small retry/backoff policy;
// when the queue is full events are dropped rather than blocking the
// simulation.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan Event
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
}

// NewNotificationManager creates a manager with one delivery worker and no
// logging.
func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(NewNoOpLogger())
}

// NewNotificationManagerWithLogger creates a manager that logs delivery
// failures through the given logger.
func NewNotificationManagerWithLogger(logger Logger) *NotificationManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	nm := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan Event, 1024),
		logger:    logger,
	}
	nm.wg.Add(1)
	go nm.worker()
	return nm
}

// RegisterNotifier adds a notifier. Fails on nil, empty ID, or duplicates.
func (nm *NotificationManager) RegisterNotifier(n Notifier) error {
	if n == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	if n.ID() == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, exists := nm.notifiers[n.ID()]; exists {
		return fmt.Errorf("notifier with ID %s already exists", n.ID())
	}
	nm.notifiers[n.ID()] = n
	return nil
}

// UnregisterNotifier closes and removes a notifier.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	n, exists := nm.notifiers[id]
	if exists {
		delete(nm.notifiers, id)
	}
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := n.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}
	return nil
}

// GetNotifier retrieves a registered notifier by ID.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	n, exists := nm.notifiers[id]
	return n, exists
}

// ListNotifiers returns the registered notifier IDs.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Publish enqueues an event for asynchronous delivery to every registered
// notifier. Non-blocking; drops the event if the queue is full.
func (nm *NotificationManager) Publish(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	nm.mu.RLock()
	closed := nm.closed
	nm.mu.RUnlock()
	if closed {
		return
	}

	select {
	case nm.jobs <- event:
	default:
		nm.logger.Warnf("notification queue full, dropping event type=%s", event.Type)
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for event := range nm.jobs {
		nm.dispatch(event)
	}
}

func (nm *NotificationManager) dispatch(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nm.mu.RLock()
	targets := make([]Notifier, 0, len(nm.notifiers))
	for _, n := range nm.notifiers {
		targets = append(targets, n)
	}
	nm.mu.RUnlock()

	for _, n := range targets {
		nm.deliverWithRetry(ctx, n, event)
	}
}

// deliverWithRetry attempts delivery up to four times with exponential
// backoff.
func (nm *NotificationManager) deliverWithRetry(ctx context.Context, n Notifier, event Event) {
	const maxRetries = 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := n.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.logger.Warnf("notification failed: notifier=%s attempt=%d error=%v", n.ID(), attempt+1, err)
		if attempt == maxRetries {
			nm.logger.Errorf("giving up on notifier %s after %d attempts", n.ID(), maxRetries+1)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Close drains the queue, stops the worker, and closes every notifier.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	defer nm.mu.Unlock()
	var errs []error
	for id, n := range nm.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing notifiers: %v", errs)
	}
	return nil
}
