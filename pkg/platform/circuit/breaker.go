// Package circuit decides when writes to a flaky sink should be diverted.
package circuit

import "sync"

type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Transition reports a state change caused by one observation.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionOpened
	TransitionClosed
)

// Breaker trips after a run of failures and recovers after a run of
// successes. The primary keeps being called while open; the breaker only
// says whether a failed call should go to the fallback.
type Breaker struct {
	name         string
	tripAfter    int
	recoverAfter int

	mu     sync.Mutex
	state  State
	streak int // failures while closed, successes while open
}

type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker (default 5).
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.tripAfter = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive successes close it again (default 3).
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.recoverAfter = n
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{name: name, tripAfter: 5, recoverAfter: 3}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Observe records the outcome of one primary call. fallback is true while
// the breaker is open after the observation.
func (b *Breaker) Observe(ok bool) (fallback bool, t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.state == StateClosed && ok:
		b.streak = 0
	case b.state == StateClosed:
		b.streak++
		if b.streak >= b.tripAfter {
			b.state, b.streak, t = StateOpen, 0, TransitionOpened
		}
	case ok:
		b.streak++
		if b.streak >= b.recoverAfter {
			b.state, b.streak, t = StateClosed, 0, TransitionClosed
		}
	default:
		b.streak = 0
	}
	return b.state == StateOpen, t
}
