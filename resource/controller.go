package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds admission limits.
type Config struct {
	// MaxConcurrentQueries caps the number of queries scanning at once.
	// If 0, unlimited.
	MaxConcurrentQueries int64

	// QueriesPerSecond is the sustained query admission rate.
	// If 0, unlimited.
	QueriesPerSecond float64

	// Burst is the number of queries admitted at once above the rate.
	// If 0, defaults to max(1, ceil(QueriesPerSecond)).
	Burst int

	// ReadBytesPerSec limits dataset reads through RateLimitedReader.
	// If 0, unlimited.
	ReadBytesPerSec int64
}

// Controller admits queries (concurrency, rate) and paces dataset IO.
// A nil *Controller admits everything.
type Controller struct {
	cfg Config

	// Concurrency
	querySem *semaphore.Weighted // nil if unlimited
	inFlight atomic.Int64

	// Rate
	queryLimiter *rate.Limiter

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new admission controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentQueries > 0 {
		c.querySem = semaphore.NewWeighted(cfg.MaxConcurrentQueries)
	}

	if cfg.QueriesPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(cfg.QueriesPerSecond)
			if float64(burst) < cfg.QueriesPerSecond {
				burst++
			}
		}
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), burst)
	}

	if cfg.ReadBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.ReadBytesPerSec), int(cfg.ReadBytesPerSec))
	}

	return c
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireQuery waits for the rate limiter and then for a concurrency slot.
// It returns ctx's error if either wait is abandoned. Every successful call
// must be paired with ReleaseQuery.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}

	if c.queryLimiter != nil {
		if err := c.queryLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	if c.querySem != nil {
		if err := c.querySem.Acquire(ctx, 1); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	c.inFlight.Add(1)
	return nil
}

// TryAcquireQuery admits a query without blocking.
// Returns true if admitted, false if the rate or concurrency limit is reached.
func (c *Controller) TryAcquireQuery() bool {
	if c == nil {
		return true
	}

	if c.querySem != nil && !c.querySem.TryAcquire(1) {
		return false
	}

	if c.queryLimiter != nil && !c.queryLimiter.Allow() {
		if c.querySem != nil {
			c.querySem.Release(1)
		}
		return false
	}

	c.inFlight.Add(1)
	return true
}

// ReleaseQuery releases a slot taken by AcquireQuery or TryAcquireQuery.
func (c *Controller) ReleaseQuery() {
	if c == nil {
		return
	}

	if c.querySem != nil {
		c.querySem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlight returns the number of admitted queries not yet released.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// ioBurst is the largest single IO reservation, or 0 if IO is unlimited.
func (c *Controller) ioBurst() int {
	if c == nil || c.ioLimiter == nil {
		return 0
	}
	return c.ioLimiter.Burst()
}
