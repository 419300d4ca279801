package auth

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *fakeClock) {
	l := NewLimiter(max, window)
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l.now = clock.Now
	return l, clock
}

func TestLimiterRefusesSixthAttempt(t *testing.T) {
	t.Parallel()
	l, clock := newTestLimiter(5, 600*time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("203.0.113.7"), "attempt %d", i+1)
		clock.Advance(10 * time.Second)
	}
	assert.False(t, l.Allow("203.0.113.7"))
	assert.Equal(t, 5, l.Count("203.0.113.7"), "refused attempts are not recorded")

	assert.True(t, l.Allow("198.51.100.1"), "other addresses are independent")
}

func TestLimiterWindowSlides(t *testing.T) {
	t.Parallel()
	l, clock := newTestLimiter(5, 600*time.Second)

	for i := 0; i < 5; i++ {
		l.Allow("a")
	}
	assert.False(t, l.Allow("a"))

	clock.Advance(600 * time.Second)
	assert.True(t, l.Allow("a"))
	assert.Equal(t, 1, l.Count("a"))
}

func TestLimiterReset(t *testing.T) {
	t.Parallel()
	l, _ := newTestLimiter(2, time.Minute)

	l.Allow("a")
	l.Allow("a")
	assert.False(t, l.Allow("a"))

	l.Reset("a")
	assert.Equal(t, 0, l.Count("a"))
	assert.True(t, l.Allow("a"))
}

func TestLimiterDropsEmptyKeys(t *testing.T) {
	t.Parallel()
	l, clock := newTestLimiter(5, time.Minute)

	l.Allow("a")
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, l.Count("a"))

	l.mu.Lock()
	_, ok := l.attempts["a"]
	l.mu.Unlock()
	assert.False(t, ok)
}

func TestLimiterSweepsAbandonedAddresses(t *testing.T) {
	t.Parallel()
	l, clock := newTestLimiter(5, 600*time.Second)

	for i := 0; i < 1000; i++ {
		l.Allow(fmt.Sprintf("10.9.%d.%d", i/256, i%256))
	}
	assert.Len(t, l.attempts, 1000)

	clock.Advance(601 * time.Second)
	assert.True(t, l.Allow("192.0.2.1"))
	assert.Len(t, l.attempts, 1, "stale addresses are swept")

	// Within the window no further sweep runs, but live entries survive one.
	clock.Advance(300 * time.Second)
	l.Allow("192.0.2.2")
	clock.Advance(301 * time.Second)
	l.Allow("192.0.2.3")
	assert.Len(t, l.attempts, 2)
	assert.Equal(t, 1, l.Count("192.0.2.2"))
}

func TestLimiterDefaults(t *testing.T) {
	t.Parallel()
	l := NewLimiter(0, 0)
	assert.Equal(t, DefaultMaxAttempts, l.max)
	assert.Equal(t, DefaultWindow, l.window)
}

func TestLimiterConcurrent(t *testing.T) {
	t.Parallel()
	l := NewLimiter(5, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, admitted)
}
