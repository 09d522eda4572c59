// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Verify location resolution for portable and per-OS layouts

package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/devcraft/storekeep/pkg/filesystem"
	"github.com/devcraft/storekeep/pkg/paths"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		env       map[string]string
		setupFunc func(t *testing.T, fs types.FS)
		want      types.Locations
	}{
		{
			name: "linux profile layout",
			goos: "linux",
			env:  map[string]string{"XDG_CONFIG_HOME": "/home/u/.config"},
			want: types.Locations{
				BaseDir:       "/home/u/.config/Code/User",
				GlobalStore:   "/home/u/.config/Code/User/globalStorage/state.vscdb",
				WorkspaceRoot: "/home/u/.config/Code/User/workspaceStorage",
				SettingsFile:  "/home/u/.config/Code/User/settings.json",
				StorageFile:   "/home/u/.config/Code/User/globalStorage/storage.json",
				ExtensionsDir: "/home/u/.vscode/extensions",
			},
		},
		{
			name: "darwin profile layout",
			goos: "darwin",
			want: types.Locations{
				BaseDir:       "/home/u/Library/Application Support/Code/User",
				GlobalStore:   "/home/u/Library/Application Support/Code/User/globalStorage/state.vscdb",
				WorkspaceRoot: "/home/u/Library/Application Support/Code/User/workspaceStorage",
				SettingsFile:  "/home/u/Library/Application Support/Code/User/settings.json",
				StorageFile:   "/home/u/Library/Application Support/Code/User/globalStorage/storage.json",
				ExtensionsDir: "/home/u/.vscode/extensions",
			},
		},
		{
			name: "windows uses APPDATA",
			goos: "windows",
			env:  map[string]string{"APPDATA": "/roaming"},
			want: types.Locations{
				BaseDir:       "/roaming/Code/User",
				GlobalStore:   "/roaming/Code/User/globalStorage/state.vscdb",
				WorkspaceRoot: "/roaming/Code/User/workspaceStorage",
				SettingsFile:  "/roaming/Code/User/settings.json",
				StorageFile:   "/roaming/Code/User/globalStorage/storage.json",
				ExtensionsDir: "/home/u/.vscode/extensions",
			},
		},
		{
			name: "windows falls back to roaming profile",
			goos: "windows",
			want: types.Locations{
				BaseDir:       "/home/u/AppData/Roaming/Code/User",
				GlobalStore:   "/home/u/AppData/Roaming/Code/User/globalStorage/state.vscdb",
				WorkspaceRoot: "/home/u/AppData/Roaming/Code/User/workspaceStorage",
				SettingsFile:  "/home/u/AppData/Roaming/Code/User/settings.json",
				StorageFile:   "/home/u/AppData/Roaming/Code/User/globalStorage/storage.json",
				ExtensionsDir: "/home/u/.vscode/extensions",
			},
		},
		{
			name: "portable layout wins over profile",
			goos: "linux",
			env:  map[string]string{"XDG_CONFIG_HOME": "/home/u/.config"},
			setupFunc: func(t *testing.T, fs types.FS) {
				require.NoError(t, fs.MkdirAll("/app/data/user-data/User", 0755))
			},
			want: types.Locations{
				BaseDir:       "/app/data/user-data/User",
				GlobalStore:   "/app/data/user-data/User/globalStorage/state.vscdb",
				WorkspaceRoot: "/app/data/user-data/User/workspaceStorage",
				SettingsFile:  "/app/data/user-data/User/settings.json",
				StorageFile:   "/app/data/user-data/User/globalStorage/storage.json",
				ExtensionsDir: "/app/data/extensions",
				Portable:      true,
			},
		},
		{
			name: "environment override wins over portable",
			goos: "linux",
			env:  map[string]string{"STOREKEEP_BASE_DIR": "~/custom"},
			setupFunc: func(t *testing.T, fs types.FS) {
				require.NoError(t, fs.MkdirAll("/app/data/user-data/User", 0755))
			},
			want: types.Locations{
				BaseDir:       "/home/u/custom",
				GlobalStore:   "/home/u/custom/globalStorage/state.vscdb",
				WorkspaceRoot: "/home/u/custom/workspaceStorage",
				SettingsFile:  "/home/u/custom/settings.json",
				StorageFile:   "/home/u/custom/globalStorage/storage.json",
				ExtensionsDir: "/home/u/.vscode/extensions",
			},
		},
		{
			name: "unsupported OS resolves nothing",
			goos: "plan9",
			want: types.Locations{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if filepath.Separator != '/' {
				t.Skip("expectations use forward slashes")
			}
			fs := filesystem.NewMemory()
			if tt.setupFunc != nil {
				tt.setupFunc(t, fs)
			}

			r := paths.NewResolver(fs, paths.DefaultLayout(),
				paths.WithCwd("/app"),
				paths.WithGOOS(tt.goos),
				paths.WithHome("/home/u"),
				paths.WithEnv(envFrom(tt.env)),
			)

			assert.Equal(t, tt.want, r.Resolve())
		})
	}
}

func TestResolveWithoutAppDir(t *testing.T) {
	r := paths.NewResolver(filesystem.NewMemory(), paths.Layout{},
		paths.WithCwd("/app"), paths.WithGOOS("linux"), paths.WithHome("/home/u"),
		paths.WithEnv(envFrom(nil)))

	assert.True(t, r.Resolve().IsEmpty())
	assert.Equal(t, "state.vscdb", r.StoreFileName())
}

func TestStatic(t *testing.T) {
	loc := types.Locations{GlobalStore: "/x/state.vscdb"}
	assert.Equal(t, loc, paths.Static(loc).Resolve())
}

func TestLedgerPath(t *testing.T) {
	if filepath.Separator != '/' {
		t.Skip("expectations use forward slashes")
	}
	assert.Equal(t, "/work/storekeep_state.json", paths.LedgerPath("", "/work"))
	assert.Equal(t, "/work/state/l.json", paths.LedgerPath("state/l.json", "/work"))
	assert.Equal(t, "/abs/l.json", paths.LedgerPath("/abs/l.json", "/work"))
}

func TestExpandHome(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"~", "/h"},
		{"~/a/b", "/h/a/b"},
		{"/abs", "/abs"},
		{"~other/x", "~other/x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), paths.ExpandHome(tt.in, "/h"))
		})
	}
}
