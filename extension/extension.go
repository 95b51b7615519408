// Package extension provides the Forge extension adapter for Radix.
//
// It implements the forge.Extension interface to integrate the billing
// engine into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.radix" or "radix" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	radix "github.com/recordrx/radix"
	"github.com/recordrx/radix/notify"
	"github.com/recordrx/radix/store"
	"github.com/recordrx/radix/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "radix"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Billing lifecycle engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Radix as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *radix.Engine
	store      store.Store
	engineOpts []radix.Option
}

// New creates a new Radix Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying billing engine.
// This is nil until Register is called.
func (e *Extension) Engine() *radix.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the billing engine, and registers it in the DI container.
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

	opts, err := e.buildEngineOpts()
	if err != nil {
		return err
	}

	e.engine = radix.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*radix.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("radix: extension not initialized")
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
		return errors.New("radix: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs radix.Option values from the resolved config.
func (e *Extension) buildEngineOpts() ([]radix.Option, error) {
	opts := make([]radix.Option, 0, len(e.engineOpts)+3)

	if e.config.Currency != "" {
		opts = append(opts, radix.WithCurrency(e.config.Currency))
	}
	if e.config.CompanyName != "" {
		opts = append(opts, radix.WithCompany(e.config.CompanyName, e.config.CompanyTagline))
	}

	if e.config.Email.Host != "" {
		mailer, err := notify.NewMailer(e.mailConfig(), nil)
		if err != nil {
			return nil, err
		}
		opts = append(opts, radix.WithNotifier(mailer))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts, nil
}

// mailConfig translates the extension's email section into a notify.Config.
func (e *Extension) mailConfig() notify.Config {
	ec := e.config.Email
	cfg := notify.DefaultConfig()

	cfg.Host = ec.Host
	if ec.Port != 0 {
		cfg.Port = ec.Port
	}
	cfg.Username = ec.Username
	cfg.Password = ec.Password
	cfg.UseTLS = ec.UseTLS
	if ec.FromName != "" {
		cfg.FromName = ec.FromName
	}
	cfg.FromAddress = ec.FromAddress
	cfg.AdminEmail = ec.AdminEmail
	cfg.CompanyName = e.config.CompanyName
	cfg.CompanyTagline = e.config.CompanyTagline

	cfg.SendInvoiceOnGeneration = !ec.DisableInvoiceOnGeneration
	cfg.SendPaymentConfirmation = !ec.DisablePaymentConfirmation
	cfg.SendReminderBeforeDue = !ec.DisableReminderBeforeDue
	if ec.ReminderDaysBeforeDue != 0 {
		cfg.ReminderDaysBeforeDue = ec.ReminderDaysBeforeDue
	}

	return cfg
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("radix: configuration is required but not found in config files; " +
				"ensure 'extensions.radix' or 'radix' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("radix: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("currency", e.config.Currency),
		forge.F("email_enabled", e.config.Email.Host != ""),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.radix" first (namespaced pattern).
	if cm.IsSet("extensions.radix") {
		if err := cm.Bind("extensions.radix", &cfg); err == nil {
			e.Logger().Debug("radix: loaded config from file",
				forge.F("key", "extensions.radix"),
			)
			return cfg, true
		}
		e.Logger().Warn("radix: failed to bind extensions.radix config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "radix" key.
	if cm.IsSet("radix") {
		if err := cm.Bind("radix", &cfg); err == nil {
			e.Logger().Debug("radix: loaded config from file",
				forge.F("key", "radix"),
			)
			return cfg, true
		}
		e.Logger().Warn("radix: failed to bind radix config",
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
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.CompanyName == "" {
		cfg.CompanyName = defaults.CompanyName
	}
	if cfg.CompanyTagline == "" {
		cfg.CompanyTagline = defaults.CompanyTagline
	}
	if cfg.Email.Port == 0 {
		cfg.Email.Port = defaults.Email.Port
	}
	if cfg.Email.ReminderDaysBeforeDue == 0 {
		cfg.Email.ReminderDaysBeforeDue = defaults.Email.ReminderDaysBeforeDue
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
	if yamlConfig.Currency == "" && programmaticConfig.Currency != "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.CompanyName == "" && programmaticConfig.CompanyName != "" {
		yamlConfig.CompanyName = programmaticConfig.CompanyName
		yamlConfig.CompanyTagline = programmaticConfig.CompanyTagline
	}
	if yamlConfig.Email.Host == "" && programmaticConfig.Email.Host != "" {
		yamlConfig.Email = programmaticConfig.Email
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
