package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func never() float64  { return 1 }
func always() float64 { return 0 }

func newTestLimiter(clock *fakeClock, chance func() float64) *Limiter {
	return New(100, time.Minute, WithClock(clock.Now), WithRandom(chance))
}

func TestAdmit_HundredThenReject(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := newTestLimiter(clock, never)

	for i := 1; i <= 100; i++ {
		d := l.Admit("1.2.3.4")
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 100-i, d.Remaining)
		assert.Equal(t, 100, d.Limit)
	}
	d := l.Admit("1.2.3.4")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)
}

func TestAdmit_ResetsAfterWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := newTestLimiter(clock, never)

	for i := 0; i < 101; i++ {
		l.Admit("c")
	}
	assert.False(t, l.Admit("c").Allowed)

	clock.Advance(time.Minute)
	assert.False(t, l.Admit("c").Allowed, "window is inclusive of its reset instant")

	clock.Advance(time.Millisecond)
	d := l.Admit("c")
	assert.True(t, d.Allowed)
	assert.Equal(t, 99, d.Remaining)
}

func TestAdmit_ClientsAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := New(2, time.Minute, WithClock(clock.Now), WithRandom(never))

	l.Admit("a")
	l.Admit("a")
	assert.False(t, l.Admit("a").Allowed)
	assert.True(t, l.Admit("b").Allowed)
}

func TestAdmit_EmptyIDSharesUnknownBucket(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := New(1, time.Minute, WithClock(clock.Now), WithRandom(never))

	assert.True(t, l.Admit("").Allowed)
	assert.False(t, l.Admit(UnknownClient).Allowed)
}

func TestAdmit_SweepsExpiredWindows(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	chance := never
	l := New(10, time.Minute, WithClock(clock.Now), WithRandom(func() float64 { return chance() }))

	for _, id := range []string{"a", "b", "c"} {
		l.Admit(id)
	}
	require.Equal(t, 3, l.Len())

	clock.Advance(2 * time.Minute)
	chance = always
	l.Admit("d")
	assert.Equal(t, 1, l.Len())
}

func TestSweep_KeepsLiveWindows(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := newTestLimiter(clock, never)

	l.Admit("old")
	clock.Advance(90 * time.Second)
	l.Admit("new")

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
}

func TestAdmit_ConcurrentIncrementsAreNotLost(t *testing.T) {
	l := New(1000, time.Hour, WithRandom(never))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for g := 0; g < 50; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				if l.Admit("shared").Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, allowed)
	assert.False(t, l.Admit("shared").Allowed)
}

func TestNew_Defaults(t *testing.T) {
	l := New(0, 0)
	assert.Equal(t, DefaultMaxRequests, l.Max())
	assert.Equal(t, DefaultWindow, l.Window())
}

func TestClientID(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, UnknownClient, ClientID(h, DefaultClientHeaders))

	h.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
	assert.Equal(t, "10.0.0.1", ClientID(h, DefaultClientHeaders))

	h.Set("CF-Connecting-IP", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", ClientID(h, DefaultClientHeaders))
}
