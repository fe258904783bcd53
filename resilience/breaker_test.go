package resilience

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(maxFailures uint) (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := NewBreaker(Config{MaxFailures: maxFailures, Cooldown: time.Second})
	b.now = clock.Now
	return b, clock
}

func TestBreaker_Closed(t *testing.T) {
	b, _ := newTestBreaker(3)

	if b.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", b.State())
	}
	for range 5 {
		if err := b.Allow(); err != nil {
			t.Fatalf("Allow() = %v, want nil", err)
		}
		b.Success()
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3)
	cause := errors.New("share offline")

	for i := range 3 {
		if b.State() != StateClosed {
			t.Fatalf("state before failure %d = %v, want closed", i+1, b.State())
		}
		_ = b.Allow()
		b.Failure(cause)
	}

	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	err := b.Allow()
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Allow() = %v, want ErrSourceUnavailable", err)
	}
	if !strings.Contains(err.Error(), "share offline") {
		t.Errorf("error = %q, want it to name the cause", err.Error())
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(2)

	b.Failure(errors.New("x"))
	b.Success()
	b.Failure(errors.New("x"))

	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed: failures were not consecutive", b.State())
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, clock := newTestBreaker(1)
	b.Failure(errors.New("x"))

	clock.Advance(999 * time.Millisecond)
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open during cooldown", b.State())
	}

	clock.Advance(time.Millisecond)
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open after cooldown", b.State())
	}

	if err := b.Allow(); err != nil {
		t.Fatalf("probe Allow() = %v, want nil", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("second Allow() = %v, want ErrSourceUnavailable while probing", err)
	}

	b.Success()
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed after a good probe", b.State())
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b, clock := newTestBreaker(1)
	b.Failure(errors.New("x"))
	clock.Advance(time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("probe Allow() = %v", err)
	}
	b.Failure(errors.New("still down"))

	if b.State() != StateOpen {
		t.Errorf("state = %v, want open after a failed probe", b.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	b, _ := newTestBreaker(1)
	b.Failure(errors.New("x"))
	b.Reset()

	if err := b.Allow(); err != nil {
		t.Errorf("Allow() after Reset = %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(42):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestSources(t *testing.T) {
	s := NewSources(Config{MaxFailures: 1, Cooldown: time.Hour})

	if s.For("a") != s.For("a") {
		t.Error("For() should return the same breaker for a source")
	}
	s.For("a").Failure(errors.New("down"))
	_ = s.For("b").Allow()
	s.For("b").Success()

	if got := s.Unavailable(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Unavailable() = %v, want [a]", got)
	}
}
