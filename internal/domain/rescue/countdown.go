package rescue

import (
	"sync"
	"time"
)

const DefaultCountdownSeconds = 300

type CountdownConfig struct {
	StartSeconds int
	StartPaused  bool
}

// Countdown drains whole seconds from accumulated frame time.
type Countdown struct {
	mu        sync.Mutex
	cfg       CountdownConfig
	remaining int
	running   bool
	accum     time.Duration
	observers observerSet[int]
}

func NewCountdown(cfg CountdownConfig) *Countdown {
	if cfg.StartSeconds <= 0 {
		cfg.StartSeconds = DefaultCountdownSeconds
	}
	return &Countdown{
		cfg:       cfg,
		remaining: cfg.StartSeconds,
		running:   !cfg.StartPaused,
	}
}

func (c *Countdown) StartSeconds() int {
	return c.cfg.StartSeconds
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Countdown) Start() {
	c.mu.Lock()
	c.running = c.remaining > 0
	c.accum = 0
	cur, fns := c.remaining, c.observers.snapshot()
	c.mu.Unlock()
	notifyAll(fns, cur)
}

func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Reset sets the remaining time; a negative value restores the configured start.
func (c *Countdown) Reset(seconds int) {
	if seconds < 0 {
		seconds = c.cfg.StartSeconds
	}
	c.mu.Lock()
	c.remaining = seconds
	c.accum = 0
	if seconds == 0 {
		c.running = false
	}
	cur, fns := c.remaining, c.observers.snapshot()
	c.mu.Unlock()
	notifyAll(fns, cur)
}

func (c *Countdown) Tick(dt time.Duration) {
	c.mu.Lock()
	if !c.running || c.remaining <= 0 || dt <= 0 {
		c.mu.Unlock()
		return
	}
	c.accum += dt
	if c.accum < time.Second {
		c.mu.Unlock()
		return
	}
	ticks := int(c.accum / time.Second)
	c.accum -= time.Duration(ticks) * time.Second
	c.remaining -= ticks
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
	}
	cur, fns := c.remaining, c.observers.snapshot()
	c.mu.Unlock()
	notifyAll(fns, cur)
}

// Subscribe replays the remaining seconds to fn before returning.
func (c *Countdown) Subscribe(fn func(remaining int)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.observers.add(fn)
	cur := c.remaining
	c.mu.Unlock()
	fn(cur)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers.remove(id)
	}
}
