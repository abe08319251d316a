// Package ratelimit is the per-client fixed-window admission controller.
//
// State lives in one Limiter owned by the server and is lost on restart.
package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 100
	DefaultWindow      = time.Minute
	// UnknownClient is the shared bucket for requests without a client id.
	UnknownClient = "unknown"
	sweepChance   = 0.01
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per client inside a window that starts on the
// client's first request and is replaced once it has expired.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	max    int
	period time.Duration
	now    func() time.Time
	chance func() float64
}

type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithRandom replaces the source used to decide when to sweep.
func WithRandom(f func() float64) Option {
	return func(l *Limiter) { l.chance = f }
}

// New returns a Limiter admitting max requests per period per client.
// Non-positive arguments fall back to the defaults.
func New(max int, period time.Duration, opts ...Option) *Limiter {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if period <= 0 {
		period = DefaultWindow
	}
	l := &Limiter{
		windows: make(map[string]*window),
		max:     max,
		period:  period,
		now:     time.Now,
		chance:  rand.Float64,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit counts one request for clientID and reports whether it is within
// budget. An empty id is counted against UnknownClient.
func (l *Limiter) Admit(clientID string) Decision {
	if clientID == "" {
		clientID = UnknownClient
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[clientID]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[clientID] = w
	}
	w.count++

	if l.chance() < sweepChance {
		l.sweepLocked(now)
	}

	remaining := l.max - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   w.count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   w.resetAt,
	}
}

// Sweep drops every expired window and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now())
}

func (l *Limiter) sweepLocked(now time.Time) int {
	removed := 0
	for id, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Limiter) Max() int { return l.max }

func (l *Limiter) Window() time.Duration { return l.period }
