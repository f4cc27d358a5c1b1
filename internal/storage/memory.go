package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/claude/ironlog/internal/event"
)

// Memory is an in-process event store. Events are kept in their encoded form
// so callers never share memory with the log.
type Memory struct {
	mu      sync.RWMutex
	records [][]byte
}

// NewMemory returns a store seeded with events.
func NewMemory(events ...event.Event) *Memory {
	m := &Memory{}
	if err := m.Append(context.Background(), events); err != nil {
		panic(fmt.Sprintf("storage: seeding memory store: %v", err))
	}
	return m
}

// ReadAll returns every event in append order.
func (m *Memory) ReadAll(context.Context) ([]event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]event.Event, 0, len(m.records))
	for i, rec := range m.records {
		e, err := event.Unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("decoding event %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Append adds events atomically: either all are stored or none.
func (m *Memory) Append(_ context.Context, events []event.Event) error {
	rows, err := toRows(events)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.records = append(m.records, r.Payload)
	}
	return nil
}

// Len is the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
