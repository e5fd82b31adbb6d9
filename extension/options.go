package extension

import (
	"time"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/order"
	"github.com/xraph/paylater/plugin"
	"github.com/xraph/paylater/store"
)

// Option configures the PayLater Forge extension.
type Option func(*Extension)

// WithStore sets the store for the engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a paylater.Option through to the underlying engine.
func WithEngineOption(opt paylater.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers an engine plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, paylater.WithPlugin(p))
	}
}

// WithOrderSource wires the finalized-order feed for the profit-to-limit
// sweep.
func WithOrderSource(src order.Source) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, paylater.WithOrderSource(src))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for paylater routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithLockWait bounds how long a mutation waits for the account lock.
func WithLockWait(d time.Duration) Option {
	return func(e *Extension) { e.config.LockWait = d }
}

// WithJobTick sets how often the engine polls installed schedules.
func WithJobTick(d time.Duration) Option {
	return func(e *Extension) { e.config.JobTick = d }
}

// WithDueSoonWindow sets how far ahead the due-notification sweep looks.
func WithDueSoonWindow(d time.Duration) Option {
	return func(e *Extension) { e.config.DueSoonWindow = d }
}
