// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dirs), process environment
// PURPOSE: Verify configuration layering and validation

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devcraft/storekeep/pkg/config"
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolated(t *testing.T) config.LoadOptions {
	t.Helper()
	return config.LoadOptions{
		Cwd:           t.TempDir(),
		UserConfigDir: t.TempDir(),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(isolated(t))
	require.NoError(t, err)

	assert.Equal(t, "Code", cfg.Target.AppDir)
	assert.Equal(t, ".vscode", cfg.Target.DotDir)
	assert.Equal(t, "state.vscdb", cfg.Target.StoreFile)
	assert.Equal(t, "ItemTable", cfg.Store.Table)
	assert.Equal(t, 5000, cfg.Store.BusyTimeoutMs)
	assert.Equal(t, "storekeep_state.json", cfg.Ledger.Path)
	assert.Equal(t, "2.1", cfg.Ledger.ConfigVersion)
	assert.Equal(t, ".backup", cfg.Backup.Suffix)
	assert.True(t, cfg.Backup.Verify)
	assert.Equal(t, "augment", cfg.Plugins.Marker)
	assert.Empty(t, cfg.Environment.Variables)
	assert.Empty(t, cfg.Source)

	overrides := cfg.Settings.OverrideMap()
	assert.Equal(t, "off", overrides["telemetry.telemetryLevel"])
	assert.Equal(t, false, overrides["extensions.autoUpdate"])
	assert.Len(t, cfg.Settings.Overrides, 4)
}

func TestLoadLayers(t *testing.T) {
	tests := []struct {
		name       string
		setupFunc  func(t *testing.T, opts *config.LoadOptions)
		verifyFunc func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "local file overrides defaults",
			setupFunc: func(t *testing.T, opts *config.LoadOptions) {
				writeFile(t, filepath.Join(opts.Cwd, "storekeep.toml"), `
[store]
table = "Items"
[backup]
verify = false
`)
			},
			verifyFunc: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "Items", cfg.Store.Table)
				assert.False(t, cfg.Backup.Verify)
				assert.Equal(t, ".backup", cfg.Backup.Suffix)
				assert.Contains(t, cfg.Source, "storekeep.toml")
			},
		},
		{
			name: "user file is used when no local file exists",
			setupFunc: func(t *testing.T, opts *config.LoadOptions) {
				writeFile(t, filepath.Join(opts.UserConfigDir, "config.toml"), `
[target]
app_dir = "Code - Insiders"
`)
			},
			verifyFunc: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "Code - Insiders", cfg.Target.AppDir)
				assert.Equal(t, "Code - Insiders", cfg.Layout().AppDir)
			},
		},
		{
			name: "local file wins over user file",
			setupFunc: func(t *testing.T, opts *config.LoadOptions) {
				writeFile(t, filepath.Join(opts.UserConfigDir, "config.toml"), "[plugins]\nmarker = \"user\"\n")
				writeFile(t, filepath.Join(opts.Cwd, "storekeep.toml"), "[plugins]\nmarker = \"local\"\n")
			},
			verifyFunc: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "local", cfg.Plugins.Marker)
			},
		},
		{
			name: "file overrides replace the default list",
			setupFunc: func(t *testing.T, opts *config.LoadOptions) {
				writeFile(t, filepath.Join(opts.Cwd, "storekeep.toml"), `
[[settings.override]]
key = "editor.fontSize"
value = 14
`)
			},
			verifyFunc: func(t *testing.T, cfg *config.Config) {
				require.Len(t, cfg.Settings.Overrides, 1)
				assert.Equal(t, "editor.fontSize", cfg.Settings.Overrides[0].Key)
				assert.EqualValues(t, 14, cfg.Settings.Overrides[0].Value)
			},
		},
		{
			name: "environment wins over files",
			setupFunc: func(t *testing.T, opts *config.LoadOptions) {
				writeFile(t, filepath.Join(opts.Cwd, "storekeep.toml"), "[store]\nbusy_timeout_ms = 100\n")
				t.Setenv("STOREKEEP_STORE__BUSY_TIMEOUT_MS", "250")
				t.Setenv("STOREKEEP_LEDGER__PATH", "/var/lib/storekeep/ledger.json")
			},
			verifyFunc: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 250, cfg.Store.BusyTimeoutMs)
				assert.Equal(t, 250, cfg.StoreOptions().BusyTimeout)
				assert.Equal(t, "/var/lib/storekeep/ledger.json", cfg.Ledger.Path)
			},
		},
		{
			name: "overrides win over environment",
			setupFunc: func(t *testing.T, opts *config.LoadOptions) {
				t.Setenv("STOREKEEP_STORE__TABLE", "FromEnv")
				opts.Overrides = map[string]interface{}{"store.table": "FromFlag", "backup.verify": "false"}
			},
			verifyFunc: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "FromFlag", cfg.Store.Table)
				assert.False(t, cfg.Backup.Verify)
			},
		},
		{
			name: "explicit config file",
			setupFunc: func(t *testing.T, opts *config.LoadOptions) {
				opts.ConfigFile = filepath.Join(t.TempDir(), "custom.toml")
				writeFile(t, opts.ConfigFile, "[environment.variables]\nBROWSER = \"\"\nEDITOR_MODE = \"default\"\n")
			},
			verifyFunc: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, map[string]string{"BROWSER": "", "EDITOR_MODE": "default"}, cfg.Environment.Variables)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolated(t)
			tt.setupFunc(t, &opts)

			cfg, err := config.Load(opts)
			require.NoError(t, err)
			tt.verifyFunc(t, cfg)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		explicit string
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing explicit file",
			explicit: "/nonexistent/storekeep.toml",
			wantCode: errors.ErrConfigLoad,
		},
		{
			name:     "malformed toml",
			content:  "[store\ntable = ",
			wantCode: errors.ErrConfigParse,
		},
		{
			name:     "empty table name",
			content:  "[store]\ntable = \"\"\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "negative busy timeout",
			content:  "[store]\nbusy_timeout_ms = -1\n",
			wantCode: errors.ErrConfigValid,
		},
		{
			name:     "override without key",
			content:  "[[settings.override]]\nvalue = 1\n",
			wantCode: errors.ErrConfigValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolated(t)
			opts.ConfigFile = tt.explicit
			if tt.content != "" {
				writeFile(t, filepath.Join(opts.Cwd, "storekeep.toml"), tt.content)
			}

			_, err := config.Load(opts)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(err))
		})
	}
}

func TestToTOML(t *testing.T) {
	cfg, err := config.Load(isolated(t))
	require.NoError(t, err)

	data, err := config.ToTOML(cfg)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "[store]")
	assert.Contains(t, text, "ItemTable")
	assert.Contains(t, text, "[[settings.override]]")
	assert.NotContains(t, text, "Source")
}

func TestDefaultsContent(t *testing.T) {
	assert.Contains(t, config.DefaultsContent(), "[target]")
}

func TestParseOverrides(t *testing.T) {
	got, err := config.ParseOverrides([]string{"store.table=Items", " ledger.path = /tmp/l.json", "output.styles="})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"store.table":   "Items",
		"ledger.path":   "/tmp/l.json",
		"output.styles": "",
	}, got)

	got, err = config.ParseOverrides(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"novalue", "=x"} {
		_, err := config.ParseOverrides([]string{bad})
		require.Error(t, err, bad)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	}
}
