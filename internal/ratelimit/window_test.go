package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a mutable time source for driving the window by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSlidingWindowAdmitsUpToCapacity(t *testing.T) {
	clock := newFakeClock()
	w := NewSlidingWindow(3, time.Minute, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		if !w.Admit() {
			t.Fatalf("call %d: expected admission", i)
		}
	}
	if w.Admit() {
		t.Fatalf("expected rejection once capacity is exhausted")
	}
	if got := w.Remaining(); got != 0 {
		t.Fatalf("expected 0 remaining, got %d", got)
	}
}

func TestSlidingWindowRecoversAfterWindow(t *testing.T) {
	clock := newFakeClock()
	w := NewSlidingWindow(2, time.Minute, WithClock(clock.Now))

	if !w.Admit() || !w.Admit() {
		t.Fatalf("expected initial admissions")
	}
	if w.Admit() {
		t.Fatalf("expected rejection at capacity")
	}

	clock.Advance(time.Minute + time.Millisecond)
	if !w.Admit() {
		t.Fatalf("expected admission after entries aged out")
	}
}

func TestSlidingWindowSlidesContinuously(t *testing.T) {
	clock := newFakeClock()
	w := NewSlidingWindow(2, time.Minute, WithClock(clock.Now))

	if !w.Admit() {
		t.Fatalf("expected admission at t=0")
	}
	clock.Advance(30 * time.Second)
	if !w.Admit() {
		t.Fatalf("expected admission at t=30s")
	}
	if w.Admit() {
		t.Fatalf("expected rejection at t=30s with window full")
	}

	// The first entry expires at t=60s, the second at t=90s. A fixed-aligned
	// bucket would have reset both at once.
	clock.Advance(31 * time.Second)
	if !w.Admit() {
		t.Fatalf("expected one slot back at t=61s")
	}
	if w.Admit() {
		t.Fatalf("expected rejection, second entry still inside window")
	}
}

func TestSlidingWindowZeroCapacityNeverAdmits(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		w := NewSlidingWindow(capacity, time.Minute)
		for i := 0; i < 10; i++ {
			if w.Admit() {
				t.Fatalf("capacity %d: expected rejection", capacity)
			}
		}
	}
}

func TestSlidingWindowBackwardClockDoesNotOverAdmit(t *testing.T) {
	clock := newFakeClock()
	w := NewSlidingWindow(1, time.Minute, WithClock(clock.Now))

	if !w.Admit() {
		t.Fatalf("expected admission")
	}
	// Clock jumps back; the recorded entry must still count as unexpired.
	clock.Advance(-30 * time.Second)
	if w.Admit() {
		t.Fatalf("backward clock jump must not free capacity")
	}
}

func TestSlidingWindowConcurrentBurst(t *testing.T) {
	const capacity = 50
	w := NewSlidingWindow(capacity, time.Minute)

	var (
		admitted int64
		rejected int64
		start    = make(chan struct{})
		wg       sync.WaitGroup
	)
	for i := 0; i < 2*capacity; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if w.Admit() {
				atomic.AddInt64(&admitted, 1)
			} else {
				atomic.AddInt64(&rejected, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if admitted != capacity {
		t.Fatalf("expected exactly %d admissions, got %d", capacity, admitted)
	}
	if rejected != capacity {
		t.Fatalf("expected exactly %d rejections, got %d", capacity, rejected)
	}
}

func TestSlidingWindowNoOverAdmissionAcrossPattern(t *testing.T) {
	clock := newFakeClock()
	const capacity = 5
	w := NewSlidingWindow(capacity, time.Minute, WithClock(clock.Now))

	// Irregular call pattern; count admissions inside each trailing minute.
	var admittedAt []time.Time
	for step := 0; step < 200; step++ {
		if w.Admit() {
			admittedAt = append(admittedAt, clock.Now())
		}
		clock.Advance(time.Duration(step%7) * time.Second)
	}

	for _, ts := range admittedAt {
		inWindow := 0
		for _, other := range admittedAt {
			if !other.After(ts) && ts.Sub(other) < time.Minute {
				inWindow++
			}
		}
		if inWindow > capacity {
			t.Fatalf("found %d admissions inside one window ending at %v", inWindow, ts)
		}
	}
}
