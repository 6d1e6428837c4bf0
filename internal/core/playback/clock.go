// Package playback drives the displayed instant forward in time and shares
// every change with the rest of the service.
package playback

import (
	"context"
	"sync"
	"time"

	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/errors"
)

// DefaultTickInterval is the period between two automatic advances
const DefaultTickInterval = 2 * time.Second

// ClockState represents whether the clock is ticking
type ClockState string

const (
	ClockStopped ClockState = "stopped"
	ClockRunning ClockState = "running"
)

// TickerFunc starts a ticker and returns its channel and a stop function
type TickerFunc func(period time.Duration) (<-chan time.Time, func())

func systemTicker(period time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(period)
	return ticker.C, ticker.Stop
}

// Clock advances an externally owned playback instant by one step on every
// tick. It reads the instant through the getter and writes the advanced
// value through the setter; the clock itself holds no time value.
type Clock struct {
	period    time.Duration
	get       func() series.PlaybackInstant
	set       func(series.PlaybackInstant)
	advance   func() series.PlaybackInstant
	newTicker TickerFunc
	logger    ports.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// ClockOption customizes a Clock
type ClockOption func(*Clock)

// WithTicker replaces the system ticker
func WithTicker(f TickerFunc) ClockOption {
	return func(c *Clock) {
		c.newTicker = f
	}
}

// WithAdvance makes each tick call f instead of the getter and setter. f must
// advance the instant atomically.
func WithAdvance(f func() series.PlaybackInstant) ClockOption {
	return func(c *Clock) {
		c.advance = f
	}
}

// NewClock creates a stopped clock
func NewClock(period time.Duration, get func() series.PlaybackInstant, set func(series.PlaybackInstant), logger ports.Logger, opts ...ClockOption) (*Clock, error) {
	if get == nil || set == nil {
		return nil, errors.NewValidationError("clock getter and setter are required")
	}
	if logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if period <= 0 {
		period = DefaultTickInterval
	}

	c := &Clock{
		period:    period,
		get:       get,
		set:       set,
		newTicker: systemTicker,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start begins ticking. Calling Start on a running clock does nothing.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticks, stopTicker := c.newTicker(c.period)

	c.cancel = cancel
	c.done = done

	go c.run(ctx, ticks, stopTicker, done)

	c.logger.Info("Playback clock started", ports.F("period", c.period.String()))
}

func (c *Clock) run(ctx context.Context, ticks <-chan time.Time, stopTicker func(), done chan struct{}) {
	defer close(done)
	defer stopTicker()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			// A stop that races with a tick wins
			if ctx.Err() != nil {
				return
			}
			c.tick()
		}
	}
}

func (c *Clock) tick() {
	if c.advance != nil {
		c.advance()
		return
	}
	c.set(c.get().Advance())
}

// Stop halts ticking and waits until the tick goroutine has exited. It is
// safe to call on a stopped clock.
func (c *Clock) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	c.logger.Info("Playback clock stopped")
}

// State reports whether the clock is running
func (c *Clock) State() ClockState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return ClockRunning
	}
	return ClockStopped
}

// Period returns the time between two ticks
func (c *Clock) Period() time.Duration {
	return c.period
}
