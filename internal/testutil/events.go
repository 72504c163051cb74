package testutil

import (
	"context"
	"sync"
)

type Event struct {
	Topic string
	Key   string
	Value any
}

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (p *RecordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Topic: topic, Key: key, Value: event})
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

func (p *RecordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the "type" field of every recorded map event, in order.
func (p *RecordingPublisher) Types() []string {
	var out []string
	for _, e := range p.Events() {
		if m, ok := e.Value.(map[string]any); ok {
			if s, ok := m["type"].(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
