package config

import (
	"github.com/devcraft/storekeep/pkg/backup"
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/kvstore"
	"github.com/devcraft/storekeep/pkg/paths"
)

// Config is the effective storekeep configuration.
type Config struct {
	Target      Target      `koanf:"target" toml:"target"`
	Store       Store       `koanf:"store" toml:"store"`
	Ledger      Ledger      `koanf:"ledger" toml:"ledger"`
	Backup      Backup      `koanf:"backup" toml:"backup"`
	Plugins     Plugins     `koanf:"plugins" toml:"plugins"`
	Environment Environment `koanf:"environment" toml:"environment"`
	Settings    Settings    `koanf:"settings" toml:"settings"`
	Output      Output      `koanf:"output" toml:"output"`

	// Source is the config file that was loaded, if any
	Source string `koanf:"-" toml:"-"`
}

// Target names the parts of the target application's layout.
type Target struct {
	AppDir    string `koanf:"app_dir" toml:"app_dir"`
	DotDir    string `koanf:"dot_dir" toml:"dot_dir"`
	StoreFile string `koanf:"store_file" toml:"store_file"`
}

// Store holds key-value store access settings.
type Store struct {
	Table         string `koanf:"table" toml:"table"`
	BusyTimeoutMs int    `koanf:"busy_timeout_ms" toml:"busy_timeout_ms"`
}

// Ledger holds ledger file settings.
type Ledger struct {
	// Path is relative to the invocation directory unless absolute
	Path          string `koanf:"path" toml:"path"`
	ConfigVersion string `koanf:"config_version" toml:"config_version"`
}

// Backup holds backup settings.
type Backup struct {
	Suffix string `koanf:"suffix" toml:"suffix"`
	Verify bool   `koanf:"verify" toml:"verify"`
}

// Plugins configures the plugin scan in status reports.
type Plugins struct {
	// Marker is matched case-insensitively against extension directory names
	Marker string `koanf:"marker" toml:"marker"`
}

// Environment holds the variables applied by the environment_vars step.
type Environment struct {
	Variables map[string]string `koanf:"variables" toml:"variables"`
}

// Output configures terminal rendering.
type Output struct {
	// Styles is a YAML styles file replacing the built-in styles
	Styles string `koanf:"styles" toml:"styles"`
}

// Settings holds the settings.json overrides applied by the app_settings step.
type Settings struct {
	Overrides []SettingOverride `koanf:"override" toml:"override"`
}

// SettingOverride is one settings.json key. Keys are dotted names and are
// written verbatim, never nested.
type SettingOverride struct {
	Key   string      `koanf:"key" toml:"key"`
	Value interface{} `koanf:"value" toml:"value"`
}

// OverrideMap returns the overrides as a map. Later entries win.
func (s Settings) OverrideMap() map[string]interface{} {
	out := make(map[string]interface{}, len(s.Overrides))
	for _, o := range s.Overrides {
		out[o.Key] = o.Value
	}
	return out
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	switch {
	case c.Store.Table == "":
		return errors.New(errors.ErrConfigValid, "store.table must not be empty")
	case c.Store.BusyTimeoutMs < 0:
		return errors.Newf(errors.ErrConfigValid, "store.busy_timeout_ms must not be negative, got %d", c.Store.BusyTimeoutMs)
	case c.Target.StoreFile == "":
		return errors.New(errors.ErrConfigValid, "target.store_file must not be empty")
	case c.Backup.Suffix == "":
		return errors.New(errors.ErrConfigValid, "backup.suffix must not be empty")
	case c.Ledger.Path == "":
		return errors.New(errors.ErrConfigValid, "ledger.path must not be empty")
	}
	for i, o := range c.Settings.Overrides {
		if o.Key == "" {
			return errors.Newf(errors.ErrConfigValid, "settings.override[%d] has no key", i)
		}
	}
	return nil
}

// Layout returns the target layout for the path resolver.
func (c *Config) Layout() paths.Layout {
	return paths.Layout{
		AppDir:    c.Target.AppDir,
		DotDir:    c.Target.DotDir,
		StoreFile: c.Target.StoreFile,
	}
}

// StoreOptions returns the options for opening key-value stores.
func (c *Config) StoreOptions() kvstore.Options {
	return kvstore.Options{
		Table:       c.Store.Table,
		BusyTimeout: c.Store.BusyTimeoutMs,
	}
}

// BackupOptions returns the options for the backup manager.
func (c *Config) BackupOptions() []backup.Option {
	return []backup.Option{
		backup.WithSuffix(c.Backup.Suffix),
		backup.WithVerify(c.Backup.Verify),
	}
}
