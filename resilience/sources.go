package resilience

import "sync"

// Sources holds one Breaker per package source, so a dead network share
// does not slow lookups against healthy sources.
type Sources struct {
	config Config

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewSources creates an empty set of per-source breakers.
func NewSources(config Config) *Sources {
	return &Sources{config: config, breakers: make(map[string]*Breaker)}
}

// For returns the breaker of source, creating it on first use.
func (s *Sources) For(source string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[source]
	if !ok {
		b = NewBreaker(s.config)
		s.breakers[source] = b
	}
	return b
}

// Unavailable returns the sources whose breaker is not closed.
func (s *Sources) Unavailable() []string {
	s.mu.Lock()
	breakers := make(map[string]*Breaker, len(s.breakers))
	for k, v := range s.breakers {
		breakers[k] = v
	}
	s.mu.Unlock()

	var out []string
	for source, b := range breakers {
		if b.State() != StateClosed {
			out = append(out, source)
		}
	}
	return out
}
