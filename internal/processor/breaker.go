package processor

import (
	"sync/atomic"
	"time"
)

// Breaker states.
const (
	StateClosed   = "Closed"
	StateOpen     = "Open"
	StateHalfOpen = "HalfOpen"
)

// breakerSnap is the whole breaker state as one value. Every transition
// replaces the snapshot via compare-and-swap, so concurrent callers can
// never observe or produce a half-applied transition.
type breakerSnap struct {
	state    string
	failures int
	openedAt time.Time
}

// Breaker is a process-wide circuit breaker shared by all concurrent
// processor invocations. After threshold consecutive recorded failures it
// opens; after cooldown it admits exactly one trial call.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	cur       atomic.Pointer[breakerSnap]
	nowFunc   func() time.Time

	// OnTransition, when set, is called after each state change with the
	// new state. Set it before the breaker is shared.
	OnTransition func(to string)
}

// NewBreaker returns a closed Breaker.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	b := &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		nowFunc:   time.Now,
	}
	b.cur.Store(&breakerSnap{state: StateClosed})
	return b
}

// State reports the current state.
func (b *Breaker) State() string {
	return b.cur.Load().state
}

// Allow reports whether a call may proceed. While Open it fails fast until
// the cooldown has elapsed; then exactly one caller wins the transition to
// HalfOpen and becomes the trial call, everyone else keeps failing fast
// until the trial's outcome is recorded.
func (b *Breaker) Allow() bool {
	for {
		snap := b.cur.Load()
		switch snap.state {
		case StateClosed:
			return true
		case StateHalfOpen:
			// trial already in flight
			return false
		case StateOpen:
			if b.nowFunc().Sub(snap.openedAt) < b.cooldown {
				return false
			}
			next := &breakerSnap{state: StateHalfOpen, openedAt: snap.openedAt}
			if b.cur.CompareAndSwap(snap, next) {
				b.notify(StateHalfOpen)
				return true
			}
			// lost the race, re-evaluate
		}
	}
}

// RecordSuccess resets the failure streak and closes the breaker.
func (b *Breaker) RecordSuccess() {
	for {
		snap := b.cur.Load()
		if snap.state == StateClosed && snap.failures == 0 {
			return
		}
		if b.cur.CompareAndSwap(snap, &breakerSnap{state: StateClosed}) {
			if snap.state != StateClosed {
				b.notify(StateClosed)
			}
			return
		}
	}
}

// RecordFailure counts a transient fault. In Closed it opens once the
// threshold is reached; in HalfOpen the failed trial re-opens immediately
// with a fresh openedAt.
func (b *Breaker) RecordFailure() {
	for {
		snap := b.cur.Load()
		var next *breakerSnap
		switch snap.state {
		case StateOpen:
			return
		case StateHalfOpen:
			next = &breakerSnap{state: StateOpen, openedAt: b.nowFunc()}
		default:
			failures := snap.failures + 1
			if failures >= b.threshold {
				next = &breakerSnap{state: StateOpen, failures: failures, openedAt: b.nowFunc()}
			} else {
				next = &breakerSnap{state: StateClosed, failures: failures}
			}
		}
		if b.cur.CompareAndSwap(snap, next) {
			if next.state == StateOpen {
				b.notify(StateOpen)
			}
			return
		}
	}
}

func (b *Breaker) notify(to string) {
	if b.OnTransition != nil {
		b.OnTransition(to)
	}
}
