// Package resilience keeps a failing package source from being probed on
// every lookup of a restore.
package resilience

import (
	"sync"
	"time"

	"go.trai.ch/zerr"
)

// State of a Breaker.
type State int

const (
	StateClosed   State = iota // lookups pass through
	StateOpen                  // lookups are refused until Cooldown elapses
	StateHalfOpen              // one probe lookup is allowed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrSourceUnavailable is returned by Allow while a breaker is open.
var ErrSourceUnavailable = zerr.New("package source unavailable")

// Config tunes a Breaker.
type Config struct {
	// MaxFailures is the number of consecutive failures that opens the
	// breaker.
	MaxFailures uint
	// Cooldown is how long an open breaker refuses lookups before letting
	// a probe through.
	Cooldown time.Duration
}

// DefaultConfig opens after three consecutive failures and probes again
// after a minute, longer than most restores take.
func DefaultConfig() Config {
	return Config{MaxFailures: 3, Cooldown: time.Minute}
}

// Breaker is a three-state circuit breaker for one package source.
type Breaker struct {
	config Config
	now    func() time.Time

	mu          sync.Mutex
	state       State
	failures    uint
	openedAt    time.Time
	probeActive bool
	lastErr     error
}

// NewBreaker creates a closed breaker.
func NewBreaker(config Config) *Breaker {
	if config.MaxFailures == 0 {
		config.MaxFailures = DefaultConfig().MaxFailures
	}
	return &Breaker{config: config, now: time.Now}
}

// State returns the current state, moving an open breaker whose cooldown
// has elapsed to half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

func (b *Breaker) advance() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.Cooldown {
		b.state = StateHalfOpen
		b.probeActive = false
	}
}

// Allow reports whether a lookup may proceed. Every nil return must be
// followed by Success or Failure.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()

	switch b.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if b.probeActive {
			return b.unavailable()
		}
		b.probeActive = true
		return nil
	default:
		return b.unavailable()
	}
}

func (b *Breaker) unavailable() error {
	if b.lastErr == nil {
		return ErrSourceUnavailable
	}
	return zerr.With(zerr.Wrap(ErrSourceUnavailable, b.lastErr.Error()), "failures", b.failures)
}

// Success closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.probeActive = false
	b.lastErr = nil
}

// Failure counts a failed lookup. A failed probe reopens the breaker at
// once.
func (b *Breaker) Failure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastErr = err
	switch b.state {
	case StateHalfOpen:
		b.open()
	case StateClosed:
		if b.failures >= b.config.MaxFailures {
			b.open()
		}
	}
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.probeActive = false
}

// Reset closes the breaker and forgets past failures.
func (b *Breaker) Reset() {
	b.Success()
}
