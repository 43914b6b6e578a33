package session

import (
	"sync"
	"time"

	"media-scribe/internal/domain"
)

// EventType classifies messages emitted while a session changes state.
type EventType string

const (
	EventTypeStatus   EventType = "status"
	EventTypeProgress EventType = "progress"
	EventTypeResult   EventType = "result"
	EventTypeError    EventType = "error"
)

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq        int64            `json:"seq"`
	Timestamp  time.Time        `json:"timestamp"`
	SessionID  string           `json:"sessionId"`
	Type       EventType        `json:"type"`
	State      domain.AppState  `json:"state,omitempty"`
	Message    string           `json:"message,omitempty"`
	ErrorKind  domain.ErrorKind `json:"errorKind,omitempty"`
	File       *domain.FileInfo `json:"file,omitempty"`
	BytesDone  int64            `json:"bytesDone,omitempty"`
	BytesTotal int64            `json:"bytesTotal,omitempty"`
	Text       string           `json:"text,omitempty"`
}

// EventBus stores recent events, provides incremental reads and fans out to
// subscribers.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
	nextSub   int
	subs      map[int]func(Event)
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		subs:      make(map[int]func(Event)),
	}
}

// Publish appends one event, assigns sequence and timestamp, and notifies
// subscribers outside the lock.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	subs := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// Subscribe registers fn for every future event. fn must not block.
// The returned function removes the subscription.
func (b *EventBus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}
