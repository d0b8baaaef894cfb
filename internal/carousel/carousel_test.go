package carousel

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock fires timers only when the test advances it.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	order   int
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, at: c.now + d, order: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward, running due timers in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var due []*manualTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at != due[j].at {
				return due[i].at < due[j].at
			}
			return due[i].order < due[j].order
		})
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func newTestCarousel(n int) (*Carousel[int], *manualClock) {
	items := make([]int, n)
	for i := range items {
		items[i] = i * 10
	}
	clock := &manualClock{}
	return New(items, WithClock(clock)), clock
}

func TestCarousel_AdvancesOnInterval(t *testing.T) {
	c, clock := newTestCarousel(5)
	c.Start()
	defer c.Stop()

	clock.Advance(Interval - time.Millisecond)
	assert.Equal(t, 0, c.State().Active)
	assert.False(t, c.State().Transitioning)

	clock.Advance(time.Millisecond)
	s := c.State()
	assert.True(t, s.Transitioning)
	assert.Equal(t, Transitioning, s.Phase)
	assert.Equal(t, 0, s.Active)

	clock.Advance(TickTransition)
	s = c.State()
	assert.False(t, s.Transitioning)
	assert.Equal(t, 1, s.Active)
	assert.Equal(t, 10, s.Current)
}

func TestCarousel_WrapsAround(t *testing.T) {
	c, clock := newTestCarousel(3)
	c.Start()
	defer c.Stop()

	clock.Advance(3 * Interval)
	clock.Advance(TickTransition)
	assert.Equal(t, 0, c.State().Active)
}

func TestCarousel_ManualSelection(t *testing.T) {
	c, clock := newTestCarousel(5)
	c.Start()
	defer c.Stop()

	var seen []int
	c.OnChange(func(s State[int]) {
		if !s.Transitioning {
			seen = append(seen, s.Active)
		}
	})

	require.True(t, c.Select(3))
	assert.True(t, c.State().Transitioning)

	clock.Advance(SelectTransition - time.Millisecond)
	assert.Equal(t, 0, c.State().Active)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 3, c.State().Active)
	assert.False(t, c.State().Transitioning)
	assert.Equal(t, []int{3}, seen)
}

func TestCarousel_SelectOutOfRange(t *testing.T) {
	c, _ := newTestCarousel(2)
	assert.False(t, c.Select(2))
	assert.False(t, c.Select(-1))
	assert.False(t, c.State().Transitioning)
}

func TestCarousel_LastRequestWins(t *testing.T) {
	c, clock := newTestCarousel(5)
	c.Select(2)
	clock.Advance(100 * time.Millisecond)
	c.Select(4)

	clock.Advance(SelectTransition)
	assert.Equal(t, 4, c.State().Active)
}

func TestCarousel_NoAdvanceWithFewItems(t *testing.T) {
	for _, n := range []int{0, 1} {
		c, clock := newTestCarousel(n)
		c.Start()
		clock.Advance(10 * Interval)
		assert.Equal(t, 0, c.State().Active)
		assert.Zero(t, clock.pending())
		c.Stop()
	}
}

func TestCarousel_SizeChangeResets(t *testing.T) {
	c, clock := newTestCarousel(5)
	c.Start()
	defer c.Stop()

	c.Select(4)
	clock.Advance(SelectTransition)
	require.Equal(t, 4, c.State().Active)

	c.Select(3)
	c.SetItems([]int{1, 2})
	s := c.State()
	assert.Equal(t, 0, s.Active)
	assert.False(t, s.Transitioning)
	assert.Equal(t, 2, s.Count)

	// the stale selection must not land on the shorter list
	clock.Advance(SelectTransition)
	assert.Equal(t, 0, c.State().Active)

	clock.Advance(Interval + TickTransition)
	assert.Equal(t, 1, c.State().Active)
}

func TestCarousel_SameSizeKeepsIndex(t *testing.T) {
	c, clock := newTestCarousel(3)
	c.Select(2)
	clock.Advance(SelectTransition)

	c.SetItems([]int{7, 8, 9})
	s := c.State()
	assert.Equal(t, 2, s.Active)
	assert.Equal(t, 9, s.Current)
}

func TestCarousel_StopCancelsTimers(t *testing.T) {
	c, clock := newTestCarousel(4)
	c.Start()
	clock.Advance(Interval)
	c.Stop()

	assert.Zero(t, clock.pending())
	clock.Advance(10 * Interval)
	assert.Equal(t, 0, c.State().Active)
	assert.False(t, c.State().Transitioning)
}

func TestCarousel_SeqIncreases(t *testing.T) {
	c, clock := newTestCarousel(3)
	var seqs []uint64
	c.OnChange(func(s State[int]) { seqs = append(seqs, s.Seq) })
	c.Start()
	clock.Advance(2 * (Interval + TickTransition))
	c.Stop()

	require.NotEmpty(t, seqs)
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}
