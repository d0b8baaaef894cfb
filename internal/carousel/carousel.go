// Package carousel rotates through the latest posts on a timer.
//
// A carousel is either idle or transitioning. A timer tick or a manual
// selection starts a transition; when its delay elapses the active index is
// updated and the carousel is idle again. Every timer is tied to a
// generation so callbacks armed for an earlier item list are ignored.
package carousel

import (
	"sync"
	"time"
)

const (
	Interval         = 4800 * time.Millisecond
	TickTransition   = 350 * time.Millisecond
	SelectTransition = 250 * time.Millisecond
)

type Phase string

const (
	Idle          Phase = "idle"
	Transitioning Phase = "transitioning"
)

// State is a snapshot published after every change. Seq increases with
// each change so receivers can drop stale snapshots.
type State[T any] struct {
	Seq           uint64
	Phase         Phase
	Active        int
	Transitioning bool
	Count         int
	Current       T
	HasCurrent    bool
}

type Option func(*options)

type options struct {
	clock          Clock
	interval       time.Duration
	tickTransition time.Duration
	pickTransition time.Duration
}

func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithTimings overrides the interval and both transition delays.
func WithTimings(interval, tick, pick time.Duration) Option {
	return func(o *options) {
		o.interval = interval
		o.tickTransition = tick
		o.pickTransition = pick
	}
}

type Carousel[T any] struct {
	mu        sync.Mutex
	opts      options
	items     []T
	active    int
	phase     Phase
	seq       uint64
	running   bool
	gen       uint64
	ticker    Timer
	pending   Timer
	pendingID uint64
	onChange  func(State[T])
}

func New[T any](items []T, opts ...Option) *Carousel[T] {
	o := options{
		clock:          RealClock{},
		interval:       Interval,
		tickTransition: TickTransition,
		pickTransition: SelectTransition,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Carousel[T]{
		opts:  o,
		items: append([]T(nil), items...),
		phase: Idle,
	}
}

// OnChange registers the observer called after every state change. It is
// called without the carousel lock held and must not block.
func (c *Carousel[T]) OnChange(fn func(State[T])) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start arms the interval. With fewer than two items nothing advances.
func (c *Carousel[T]) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.armTickLocked()
	c.mu.Unlock()
}

// Stop cancels every timer. The carousel can be started again.
func (c *Carousel[T]) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.gen++
	c.cancelLocked()
	c.phase = Idle
}

// Select jumps to index after the short transition, skipping the indices in
// between. Out-of-range indices are ignored.
func (c *Carousel[T]) Select(index int) bool {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return false
	}
	state, notify := c.beginLocked(c.opts.pickTransition, func() int { return index })
	c.mu.Unlock()
	notify(state)
	return true
}

// SetItems replaces the items. A change in length cancels any pending
// transition, resets the active index to 0 and re-arms the interval for the
// new length.
func (c *Carousel[T]) SetItems(items []T) {
	c.mu.Lock()
	sizeChanged := len(items) != len(c.items)
	c.items = append([]T(nil), items...)
	if sizeChanged {
		c.gen++
		c.cancelLocked()
		c.active = 0
		c.phase = Idle
		if c.running {
			c.armTickLocked()
		}
	}
	state, notify := c.changedLocked()
	c.mu.Unlock()
	notify(state)
}

func (c *Carousel[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Carousel[T]) armTickLocked() {
	if len(c.items) <= 1 {
		return
	}
	gen := c.gen
	c.ticker = c.opts.clock.AfterFunc(c.opts.interval, func() { c.tick(gen) })
}

func (c *Carousel[T]) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || !c.running {
		c.mu.Unlock()
		return
	}
	c.armTickLocked()
	n := len(c.items)
	state, notify := c.beginLocked(c.opts.tickTransition, func() int { return (c.active + 1) % n })
	c.mu.Unlock()
	notify(state)
}

// beginLocked enters the transitioning phase and schedules target to be
// applied after delay. A pending transition is replaced.
func (c *Carousel[T]) beginLocked(delay time.Duration, target func() int) (State[T], func(State[T])) {
	if c.pending != nil {
		c.pending.Stop()
	}
	gen := c.gen
	c.pendingID++
	id := c.pendingID
	c.phase = Transitioning
	c.pending = c.opts.clock.AfterFunc(delay, func() { c.finish(gen, id, target) })
	return c.changedLocked()
}

func (c *Carousel[T]) finish(gen, id uint64, target func() int) {
	c.mu.Lock()
	if gen != c.gen || id != c.pendingID || c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	if n := len(c.items); n > 0 {
		c.active = target() % n
	}
	c.phase = Idle
	state, notify := c.changedLocked()
	c.mu.Unlock()
	notify(state)
}

func (c *Carousel[T]) cancelLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Carousel[T]) changedLocked() (State[T], func(State[T])) {
	c.seq++
	state := c.stateLocked()
	fn := c.onChange
	return state, func(s State[T]) {
		if fn != nil {
			fn(s)
		}
	}
}

func (c *Carousel[T]) stateLocked() State[T] {
	s := State[T]{
		Seq:           c.seq,
		Phase:         c.phase,
		Active:        c.active,
		Transitioning: c.phase == Transitioning,
		Count:         len(c.items),
	}
	if c.active < len(c.items) {
		s.Current = c.items[c.active]
		s.HasCurrent = true
	}
	return s
}
