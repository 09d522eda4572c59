// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Verify ledger load, mutation and persistence semantics

package ledger_test

import (
	"encoding/json"
	iofs "io/fs"
	"strings"
	"testing"
	"time"

	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/filesystem"
	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerPath = "/work/storekeep_state.json"

func fixedClock() (func() time.Time, time.Time) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return at }, at
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    func() ledger.State
	}{
		{
			name: "missing file yields defaults",
			want: func() ledger.State { return ledger.Defaults("") },
		},
		{
			name:    "corrupt file yields defaults",
			content: "{not json",
			want:    func() ledger.State { return ledger.Defaults("") },
		},
		{
			name:    "partial file keeps defaults for missing keys",
			content: `{"initialized": true, "installed_components": {"environment_vars": true}}`,
			want: func() ledger.State {
				s := ledger.Defaults("")
				s.Initialized = true
				s.InstalledComponents["environment_vars"] = true
				return s
			},
		},
		{
			name:    "explicit protection off is kept",
			content: `{"protection_enabled": false, "config_version": "1.0"}`,
			want: func() ledger.State {
				s := ledger.Defaults("")
				s.ProtectionEnabled = false
				s.ConfigVersion = "1.0"
				return s
			},
		},
		{
			name:    "null components become an empty map",
			content: `{"installed_components": null}`,
			want:    func() ledger.State { return ledger.Defaults("") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			if tt.content != "" {
				require.NoError(t, fs.MkdirAll("/work", 0755))
				require.NoError(t, fs.WriteFile(ledgerPath, []byte(tt.content), 0644))
			}

			l := ledger.Load(fs, ledgerPath)

			if diff := cmp.Diff(tt.want(), l.State()); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveWritesStableDocument(t *testing.T) {
	fs := filesystem.NewMemory()
	clock, _ := fixedClock()
	l := ledger.Load(fs, ledgerPath, ledger.WithClock(clock))

	require.NoError(t, l.Save())

	data, err := fs.ReadFile(ledgerPath)
	require.NoError(t, err)

	keys := []string{
		`"initialized"`, `"last_config_time"`, `"last_clean_time"`, `"config_version"`,
		`"installed_components"`, `"protection_enabled"`, `"last_smart_clean"`,
		`"last_deep_clean"`, `"last_complete_clean"`,
	}
	text := string(data)
	last := -1
	for _, k := range keys {
		idx := strings.Index(text, k)
		require.GreaterOrEqual(t, idx, 0, "missing %s", k)
		assert.Greater(t, idx, last, "%s out of order", k)
		last = idx
	}
	assert.Contains(t, text, "\n  \"initialized\": false")
	assert.Contains(t, text, `"config_version": "2.1"`)

	_, err = fs.Stat(ledgerPath + ".tmp")
	assert.Error(t, err, "temp file should be renamed away")
}

func TestMutationsPersist(t *testing.T) {
	fs := filesystem.NewMemory()
	clock, at := fixedClock()
	l := ledger.Load(fs, ledgerPath, ledger.WithClock(clock))

	l.MarkComponentInstalled(ledger.ComponentSettings)
	l.MarkComponentInstalled(ledger.ComponentEnvironment)
	l.MarkInitialized()
	l.MarkCleaned(types.TierDeep)
	l.SetProtection(false)

	reloaded := ledger.Load(fs, ledgerPath).State()

	assert.True(t, reloaded.Initialized)
	require.NotNil(t, reloaded.LastConfigTime)
	assert.True(t, at.Equal(*reloaded.LastConfigTime))
	require.NotNil(t, reloaded.LastCleanTime)
	require.NotNil(t, reloaded.LastDeepClean)
	assert.True(t, at.Equal(*reloaded.LastDeepClean))
	assert.Nil(t, reloaded.LastSmartClean)
	assert.Nil(t, reloaded.LastCompleteClean)
	assert.False(t, reloaded.ProtectionEnabled)
	assert.Equal(t, map[string]bool{"app_settings": true, "environment_vars": true}, reloaded.InstalledComponents)

	assert.Equal(t, []string{"app_settings", "environment_vars"}, l.InstalledComponents())
	assert.True(t, l.IsComponentInstalled(ledger.ComponentSettings))
	assert.False(t, l.IsComponentInstalled("plugins"))
}

func TestMarkCleanedPerTier(t *testing.T) {
	for _, tier := range types.AllTiers {
		t.Run(tier.String(), func(t *testing.T) {
			clock, at := fixedClock()
			l := ledger.Load(filesystem.NewMemory(), ledgerPath, ledger.WithClock(clock))

			l.MarkCleaned(tier)

			s := l.State()
			require.NotNil(t, s.LastClean(tier))
			assert.True(t, at.Equal(*s.LastClean(tier)))
			for _, other := range types.AllTiers {
				if other != tier {
					assert.Nil(t, s.LastClean(other))
				}
			}
		})
	}
}

func TestReset(t *testing.T) {
	fs := filesystem.NewMemory()
	l := ledger.Load(fs, ledgerPath, ledger.WithConfigVersion("3.0"))
	l.MarkComponentInstalled(ledger.ComponentEnvironment)
	l.MarkInitialized()
	l.SetProtection(false)

	l.Reset()

	assert.Equal(t, ledger.Defaults("3.0"), l.State())
	if diff := cmp.Diff(ledger.Defaults("3.0"), ledger.Load(fs, ledgerPath).State()); diff != "" {
		t.Errorf("persisted state mismatch (-want +got):\n%s", diff)
	}
}

func TestStateReturnsCopy(t *testing.T) {
	l := ledger.Load(filesystem.NewMemory(), ledgerPath)
	l.MarkComponentInstalled(ledger.ComponentEnvironment)

	s := l.State()
	s.InstalledComponents["plugins"] = true

	assert.False(t, l.IsComponentInstalled("plugins"))
}

func TestTimestampsAreRFC3339(t *testing.T) {
	fs := filesystem.NewMemory()
	clock, _ := fixedClock()
	l := ledger.Load(fs, ledgerPath, ledger.WithClock(clock))
	l.MarkCleaned(types.TierSmart)

	data, err := fs.ReadFile(ledgerPath)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2025-03-14T09:26:53Z", raw["last_smart_clean"])
	assert.Nil(t, raw["last_deep_clean"])
}

type readOnlyFS struct {
	types.FS
}

func (readOnlyFS) WriteFile(string, []byte, iofs.FileMode) error {
	return assert.AnError
}

func TestSaveFailureIsReturnedButNotFatal(t *testing.T) {
	l := ledger.Load(readOnlyFS{filesystem.NewMemory()}, ledgerPath)

	l.MarkComponentInstalled(ledger.ComponentEnvironment)
	assert.True(t, l.IsComponentInstalled(ledger.ComponentEnvironment))

	err := l.Save()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLedgerIO))
}
