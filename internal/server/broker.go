package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/NativeSquare/Cadence-sub000/internal/session"
)

const (
	EventState  = "state"
	EventReveal = "reveal"
)

// Event is the payload published to interview subscribers.
type Event struct {
	Type   string            `json:"type"`
	State  *session.Snapshot `json:"state,omitempty"`
	Reveal *session.Reveal   `json:"reveal,omitempty"`
}

// Message is an encoded Event.
type Message struct {
	Type string
	Data []byte
}

// Broker is an in-process pub/sub for interview events, keyed by interview ID.
type Broker struct {
	logger *slog.Logger
	mu     sync.RWMutex
	subs   map[string]map[chan Message]struct{}
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger: logger,
		subs:   make(map[string]map[chan Message]struct{}),
	}
}

// Subscribe returns a channel that receives the events of one interview.
func (b *Broker) Subscribe(id string) chan Message {
	ch := make(chan Message, 16)
	b.mu.Lock()
	if b.subs[id] == nil {
		b.subs[id] = make(map[chan Message]struct{})
	}
	b.subs[id][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(id string, ch chan Message) {
	b.mu.Lock()
	delete(b.subs[id], ch)
	if len(b.subs[id]) == 0 {
		delete(b.subs, id)
	}
	b.mu.Unlock()
}

// Subscribers reports how many channels listen to id.
func (b *Broker) Subscribers(id string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[id])
}

// Publish sends an event to all subscribers of the interview.
func (b *Broker) Publish(id string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.subs[id]) == 0 {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("encoding event", "interview", id, "type", event.Type, "error", err)
		return
	}
	msg := Message{Type: event.Type, Data: data}
	for ch := range b.subs[id] {
		select {
		case ch <- msg:
		default:
			// Drop if subscriber is slow.
		}
	}
}
