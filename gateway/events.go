package gateway

import "sync"

// EventKind identifies a lifecycle event published by the engine.
type EventKind int

const (
	EventClientConnected EventKind = iota
	EventClientDisconnected
	EventMessageReceived
	EventErrorOccurred
	EventClientLogin
)

// String returns a stable name for logging.
func (k EventKind) String() string {
	switch k {
	case EventClientConnected:
		return "client-connected"
	case EventClientDisconnected:
		return "client-disconnected"
	case EventMessageReceived:
		return "message-received"
	case EventErrorOccurred:
		return "error-occurred"
	case EventClientLogin:
		return "client-login"
	default:
		return "unknown"
	}
}

// Event carries the session a lifecycle transition happened on, plus the
// raw frame for message events and the error and source for error events.
type Event struct {
	Kind    EventKind
	Session *Session
	Message string
	Err     error
	Source  string
}

// EventHandler observes published events.
type EventHandler func(Event)

// EventBus is a minimal in-process publish/subscribe mechanism for
// lifecycle events. Publication is synchronous and fans out to subscribers
// in registration order; subscribers are expected not to panic and are not
// isolated from each other.
type EventBus struct {
	mu   sync.RWMutex
	subs map[EventKind][]EventHandler
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[EventKind][]EventHandler)}
}

// Subscribe registers a handler for one event kind.
func (b *EventBus) Subscribe(kind EventKind, h EventHandler) {
	b.mu.Lock()
	b.subs[kind] = append(b.subs[kind], h)
	b.mu.Unlock()
}

// Publish delivers the event to every current subscriber of its kind, in
// the order they subscribed, on the caller's goroutine.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.subs[e.Kind]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(e)
	}
}
