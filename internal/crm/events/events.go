// Package events publishes lead lifecycle events for downstream consumers.
package events

import (
	"context"
	"sync"
	"time"
)

// Event types, also used as AMQP routing keys.
const (
	LeadCreated      = "lead.created"
	LeadUpdated      = "lead.updated"
	LeadStageChanged = "lead.stage_changed"
	LeadDeleted      = "lead.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	CompanyID  string    `json:"company_id"`
	LeadID     string    `json:"lead_id"`
	ActorID    string    `json:"actor_id"`
	FromStage  string    `json:"from_stage_id,omitempty"`
	ToStage    string    `json:"to_stage_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Memory records events in order. Tests use it to assert on what was emitted.
type Memory struct {
	mu     sync.Mutex
	events []Event
	Err    error // returned by Publish when set
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of what has been published.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Types returns the published event types in order.
func (m *Memory) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}
