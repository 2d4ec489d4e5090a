// Package events carries the engine's output stream: triggered alarms and
// per-cycle status summaries, delivered over a non-blocking FIFO bus.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"crypto-price-alerts/internal/rules"
)

// Kind tags an event on the bus.
type Kind string

const (
	// KindAlarm marks a triggered rule.
	KindAlarm Kind = "alarm"
	// KindStatus marks a completed evaluation pass.
	KindStatus Kind = "status"
)

// Alarm reports one triggered rule.
type Alarm struct {
	RuleID    string
	Symbol    string
	Target    decimal.Decimal
	Condition rules.Condition
	Observed  decimal.Decimal
	At        time.Time
}

// Status summarises one evaluation pass.
type Status struct {
	At       time.Time
	Checked  int
	Failures int
	Manual   bool
}

// Event is the tagged union placed on the bus; exactly one payload is set.
type Event struct {
	Kind   Kind
	Alarm  *Alarm
	Status *Status
}

// Bus is an unbounded FIFO queue between the engine (producer) and a
// consumer draining on its own schedule. Publish never blocks; per-producer
// order is preserved and every event is delivered once.
type Bus struct {
	mu     sync.Mutex
	queue  []Event
	notify chan struct{}
	closed bool
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{notify: make(chan struct{}, 1)}
}

// PublishAlarm enqueues a triggered-rule event.
func (b *Bus) PublishAlarm(a Alarm) {
	b.publish(Event{Kind: KindAlarm, Alarm: &a})
}

// PublishStatus enqueues a cycle summary.
func (b *Bus) PublishStatus(s Status) {
	b.publish(Event{Kind: KindStatus, Status: &s})
}

func (b *Bus) publish(ev Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, ev)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available or ctx is done.
func (b *Bus) Next(ctx context.Context) (Event, error) {
	for {
		if ev, ok := b.pop(); ok {
			return ev, nil
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-b.notify:
		}
	}
}

// TryNext pops an event without waiting.
func (b *Bus) TryNext() (Event, bool) {
	return b.pop()
}

func (b *Bus) pop() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return Event{}, false
	}
	ev := b.queue[0]
	b.queue = b.queue[1:]
	return ev, true
}

// Len reports the number of undelivered events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close stops accepting new events; queued events stay drainable.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
