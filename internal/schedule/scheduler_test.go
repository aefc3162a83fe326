package schedule

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	s := New(slog.Default())
	s.Start(context.Background())
	defer s.Stop()

	fired := make(chan struct{})
	s.Schedule(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback never fired")
	}
}

func TestStopDropsPending(t *testing.T) {
	s := New(slog.Default())
	s.Start(context.Background())

	var ran atomic.Bool
	s.Schedule(time.Hour, func() { ran.Store(true) })

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return with a pending timer")
	}
	if ran.Load() {
		t.Error("pending callback ran after Stop")
	}
}

func TestScheduleBeforeStartDropped(t *testing.T) {
	s := New(slog.Default())

	var ran atomic.Bool
	s.Schedule(time.Millisecond, func() { ran.Store(true) })

	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("callback ran without Start")
	}
}

func TestCallbacksRunConcurrently(t *testing.T) {
	s := New(slog.Default())
	s.Start(context.Background())
	defer s.Stop()

	block := make(chan struct{})
	second := make(chan struct{})

	s.Schedule(time.Millisecond, func() { <-block })
	s.Schedule(time.Millisecond, func() { close(second) })

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("second callback blocked behind first")
	}
	close(block)
}
