// Package extension provides the Forge extension adapter for PayLater.
//
// It implements the forge.Extension interface to integrate the PayLater
// engine into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.paylater" or
// "paylater" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/store"
	"github.com/xraph/paylater/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "paylater"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Deferred-payment credit engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts PayLater as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *paylater.Engine
	store      store.Store
	engineOpts []paylater.Option
}

// New creates a new PayLater Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying PayLater engine.
// This is nil until Register is called.
func (e *Extension) Engine() *paylater.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	opts := e.buildEngineOpts()

	e.engine = paylater.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*paylater.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("paylater: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("paylater: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs paylater.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []paylater.Option {
	opts := make([]paylater.Option, 0, len(e.engineOpts)+3)

	if e.config.LockWait > 0 {
		opts = append(opts, paylater.WithLockWait(e.config.LockWait))
	}
	if e.config.JobTick > 0 {
		opts = append(opts, paylater.WithJobTick(e.config.JobTick))
	}
	if e.config.DueSoonWindow > 0 {
		opts = append(opts, paylater.WithDueSoonWindow(e.config.DueSoonWindow))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("paylater: configuration is required but not found in config files; " +
				"ensure 'extensions.paylater' or 'paylater' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("paylater: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("lock_wait", e.config.LockWait),
		forge.F("job_tick", e.config.JobTick),
		forge.F("due_soon_window", e.config.DueSoonWindow),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.paylater" first (namespaced pattern).
	if cm.IsSet("extensions.paylater") {
		if err := cm.Bind("extensions.paylater", &cfg); err == nil {
			e.Logger().Debug("paylater: loaded config from file",
				forge.F("key", "extensions.paylater"),
			)
			return cfg, true
		}
		e.Logger().Warn("paylater: failed to bind extensions.paylater config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "paylater" key.
	if cm.IsSet("paylater") {
		if err := cm.Bind("paylater", &cfg); err == nil {
			e.Logger().Debug("paylater: loaded config from file",
				forge.F("key", "paylater"),
			)
			return cfg, true
		}
		e.Logger().Warn("paylater: failed to bind paylater config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.LockWait == 0 {
		cfg.LockWait = defaults.LockWait
	}
	if cfg.JobTick == 0 {
		cfg.JobTick = defaults.JobTick
	}
	if cfg.DueSoonWindow == 0 {
		cfg.DueSoonWindow = defaults.DueSoonWindow
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.LockWait == 0 && programmaticConfig.LockWait != 0 {
		yamlConfig.LockWait = programmaticConfig.LockWait
	}
	if yamlConfig.JobTick == 0 && programmaticConfig.JobTick != 0 {
		yamlConfig.JobTick = programmaticConfig.JobTick
	}
	if yamlConfig.DueSoonWindow == 0 && programmaticConfig.DueSoonWindow != 0 {
		yamlConfig.DueSoonWindow = programmaticConfig.DueSoonWindow
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
