package runtime

import (
	"log/slog"
	"time"

	"github.com/weftlabs/weft/pkg/domain"
)

// DefaultResetDelay is the cosmetic delay after which a Completed or
// Failed node returns to Waiting. It does not cancel anything.
const DefaultResetDelay = 2 * time.Second

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithResetDelay overrides the cosmetic auto-reset delay.
func WithResetDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.resetDelay = d
		}
	}
}
