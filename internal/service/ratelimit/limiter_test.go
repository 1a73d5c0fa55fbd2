package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAllowWithinWindow(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	got := []bool{
		l.Allow("twitter", 3, time.Minute),
		l.Allow("twitter", 3, time.Minute),
		l.Allow("twitter", 3, time.Minute),
		l.Allow("twitter", 3, time.Minute),
	}
	want := []bool{true, true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %v want %v", i+1, got[i], want[i])
		}
	}
}

func TestWindowResets(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	if !l.Allow("reddit", 1, time.Minute) {
		t.Fatal("first call denied")
	}
	if l.Allow("reddit", 1, time.Minute) {
		t.Fatal("second call allowed within window")
	}

	now = now.Add(time.Minute + time.Second)
	if !l.Allow("reddit", 1, time.Minute) {
		t.Fatal("call denied after window elapsed")
	}
}

func TestDeniedCallDoesNotConsume(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(func() time.Time { return now })

	l.Allow("k", 2, time.Minute)
	l.Allow("k", 2, time.Minute)
	for i := 0; i < 5; i++ {
		l.Allow("k", 2, time.Minute)
	}
	if r := l.Remaining("k", 2, time.Minute); r != 0 {
		t.Fatalf("remaining = %d, want 0", r)
	}

	now = now.Add(2 * time.Minute)
	if r := l.Remaining("k", 2, time.Minute); r != 2 {
		t.Fatalf("remaining after reset = %d, want 2", r)
	}
}

func TestZeroLimitDeniesEverything(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if l.Allow("blocked", 0, time.Minute) {
			t.Fatalf("call %d allowed with zero limit", i+1)
		}
	}
	if r := l.Remaining("blocked", 0, time.Minute); r != 0 {
		t.Fatalf("remaining = %d, want 0", r)
	}
	if l.Allow("blocked", -1, time.Minute) {
		t.Fatal("negative limit allowed a request")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, time.Minute) {
		t.Fatal("a denied")
	}
	if !l.Allow("b", 1, time.Minute) {
		t.Fatal("b denied despite separate key")
	}
	if l.Allow("a", 1, time.Minute) {
		t.Fatal("a allowed over limit")
	}
}

func TestConcurrentAllow(t *testing.T) {
	l := New()
	const limit = 100

	var wg sync.WaitGroup
	granted := make(chan bool, limit*2)
	for i := 0; i < limit*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted <- l.Allow("sym", limit, time.Hour)
		}()
	}
	wg.Wait()
	close(granted)

	n := 0
	for ok := range granted {
		if ok {
			n++
		}
	}
	if n != limit {
		t.Fatalf("granted %d, want exactly %d", n, limit)
	}
}
