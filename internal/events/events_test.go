package events

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBusFIFOOrder(t *testing.T) {
	bus := NewBus()
	for i := 0; i < 10; i++ {
		bus.PublishStatus(Status{Checked: i})
	}

	for i := 0; i < 10; i++ {
		ev, ok := bus.TryNext()
		if !ok {
			t.Fatalf("expected event %d", i)
		}
		if ev.Kind != KindStatus || ev.Status.Checked != i {
			t.Fatalf("out of order at %d: %+v", i, ev)
		}
	}
	if _, ok := bus.TryNext(); ok {
		t.Fatal("bus should be drained")
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	done := make(chan struct{})
	go func() {
		// nothing is draining; a large burst must still complete
		for i := 0; i < 10000; i++ {
			bus.PublishAlarm(Alarm{Symbol: "BTCUSDT", Observed: decimal.NewFromInt(int64(i))})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked with no consumer")
	}
	if bus.Len() != 10000 {
		t.Fatalf("expected 10000 queued events, got %d", bus.Len())
	}
}

func TestBusNextWakesOnPublish(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got := make(chan Event, 1)
	go func() {
		ev, err := bus.Next(ctx)
		if err == nil {
			got <- ev
		}
	}()

	time.Sleep(10 * time.Millisecond)
	bus.PublishStatus(Status{Checked: 7})

	select {
	case ev := <-got:
		if ev.Status.Checked != 7 {
			t.Fatalf("wrong event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not wake on publish")
	}
}

func TestBusNextHonoursContext(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bus.Next(ctx); err == nil {
		t.Fatal("Next must return an error once the context is cancelled")
	}
}

func TestBusCloseDropsNewKeepsQueued(t *testing.T) {
	bus := NewBus()
	bus.PublishStatus(Status{Checked: 1})
	bus.Close()
	bus.PublishStatus(Status{Checked: 2})

	ev, ok := bus.TryNext()
	if !ok || ev.Status.Checked != 1 {
		t.Fatalf("queued event lost: %+v ok=%v", ev, ok)
	}
	if _, ok := bus.TryNext(); ok {
		t.Fatal("event published after Close must be dropped")
	}
}
