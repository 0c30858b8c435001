package game

import (
	"context"
	"testing"
	"time"
)

func TestScheduler_RunsWhenDue(t *testing.T) {
	s := NewScheduler()
	ran := 0
	s.After(context.Background(), 100*time.Millisecond, func() { ran++ })

	s.Advance(50 * time.Millisecond)
	if ran != 0 {
		t.Fatal("task ran before its delay")
	}
	s.Advance(50 * time.Millisecond)
	if ran != 1 {
		t.Fatalf("task should run once at 100ms, ran=%d", ran)
	}
	s.Advance(time.Second)
	if ran != 1 {
		t.Fatalf("task ran again, ran=%d", ran)
	}
}

func TestScheduler_CancelledTaskIsDropped(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	s.After(ctx, 10*time.Millisecond, func() { ran = true })
	if s.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", s.Pending())
	}
	cancel()
	if s.Pending() != 0 {
		t.Fatalf("Pending after cancel = %d, want 0", s.Pending())
	}
	s.Advance(time.Second)
	if ran {
		t.Fatal("cancelled task ran")
	}
}

func TestScheduler_OrderAndReentrancy(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.After(context.Background(), 20*time.Millisecond, func() { order = append(order, "b") })
	s.After(context.Background(), 10*time.Millisecond, func() {
		order = append(order, "a")
		s.After(context.Background(), 0, func() { order = append(order, "c") })
	})

	s.Advance(30 * time.Millisecond)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order after first advance = %v, want [a b]", order)
	}
	s.Advance(0)
	if len(order) != 3 || order[2] != "c" {
		t.Fatalf("task scheduled from a task should run on the next advance, got %v", order)
	}
}
