package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps a bounded in-process trail. Oldest events are dropped
// once the cap is reached; the Kafka stream is the durable sink.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	cap    int
}

const defaultCap = 1000

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{cap: defaultCap}
}

func (s *InMemoryStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	if len(s.events) > s.cap {
		s.events = s.events[len(s.events)-s.cap:]
	}
	return nil
}

// Recent returns up to n most recent events, newest last.
func (s *InMemoryStore) Recent(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	out := make([]Event, n)
	copy(out, s.events[len(s.events)-n:])
	return out
}
