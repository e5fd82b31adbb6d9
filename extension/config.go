package extension

import "time"

// Config holds the PayLater extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.paylater" or "paylater" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for paylater routes (default: "/paylater").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// LockWait bounds how long a mutation waits for the account lock
	// before failing fast (default: 5s).
	LockWait time.Duration `json:"lock_wait" mapstructure:"lock_wait" yaml:"lock_wait"`

	// JobTick is how often the engine polls installed schedules
	// (default: 1m).
	JobTick time.Duration `json:"job_tick" mapstructure:"job_tick" yaml:"job_tick"`

	// DueSoonWindow is how far ahead the due-notification sweep looks
	// (default: 24h).
	DueSoonWindow time.Duration `json:"due_soon_window" mapstructure:"due_soon_window" yaml:"due_soon_window"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:      "/paylater",
		LockWait:      5 * time.Second,
		JobTick:       time.Minute,
		DueSoonWindow: 24 * time.Hour,
	}
}
