package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/rs/zerolog"
)

// Environment variable names
const (
	// EnvBaseDir overrides the target application's user directory
	EnvBaseDir = "STOREKEEP_BASE_DIR"

	// EnvAppData is the Windows roaming profile directory
	EnvAppData = "APPDATA"

	// EnvXDGConfigHome is consulted before the xdg package default
	EnvXDGConfigHome = "XDG_CONFIG_HOME"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside the target application's directories. These are the
// application's own layout, not storekeep settings.
const (
	GlobalStorageDir    = "globalStorage"
	WorkspaceStorageDir = "workspaceStorage"
	SettingsFileName    = "settings.json"
	StorageFileName     = "storage.json"
	PortableDataDir     = "data"
	PortableUserData    = "user-data"
	UserDir             = "User"
	ExtensionsDirName   = "extensions"

	// AppDirName is storekeep's directory under the XDG homes
	AppDirName = "storekeep"
)

// Layout names the parts of the target application's layout that differ
// between distributions. config.Config carries the user-facing values.
type Layout struct {
	// AppDir is the profile directory name, e.g. "Code"
	AppDir string

	// DotDir is the per-user dot directory holding extensions, e.g. ".vscode"
	DotDir string

	// StoreFile is the key-value store file name
	StoreFile string
}

// DefaultLayout is the stock desktop editor layout.
func DefaultLayout() Layout {
	return Layout{
		AppDir:    "Code",
		DotDir:    ".vscode",
		StoreFile: "state.vscdb",
	}
}

// Resolver computes types.Locations for one invocation.
type Resolver struct {
	fs     types.FS
	layout Layout
	cwd    string
	goos   string
	home   string
	getenv func(string) string
	logger zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCwd sets the invocation directory used for portable detection.
func WithCwd(dir string) Option {
	return func(r *Resolver) { r.cwd = dir }
}

// WithGOOS overrides runtime.GOOS.
func WithGOOS(goos string) Option {
	return func(r *Resolver) { r.goos = goos }
}

// WithHome overrides the user's home directory.
func WithHome(home string) Option {
	return func(r *Resolver) { r.home = home }
}

// WithEnv replaces os.Getenv.
func WithEnv(getenv func(string) string) Option {
	return func(r *Resolver) { r.getenv = getenv }
}

// NewResolver creates a Resolver. Unset options fall back to the process
// environment.
func NewResolver(fs types.FS, layout Layout, opts ...Option) *Resolver {
	r := &Resolver{
		fs:     fs,
		layout: layout,
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		logger: logging.GetLogger("paths"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			r.cwd = wd
		}
	}
	if r.home == "" {
		r.home = userHome(r.getenv)
	}
	if r.layout.StoreFile == "" {
		r.layout.StoreFile = DefaultLayout().StoreFile
	}
	return r
}

// Resolve returns the target application's locations. Fields that cannot be
// determined are left empty.
func (r *Resolver) Resolve() types.Locations {
	if base := r.getenv(EnvBaseDir); base != "" {
		base = ExpandHome(base, r.home)
		r.logger.Debug().Str("base_dir", base).Msg("Using base dir from environment")
		return r.locationsFor(base, r.profileExtensionsDir(), false)
	}

	if r.cwd != "" {
		portable := filepath.Join(r.cwd, PortableDataDir, PortableUserData, UserDir)
		if r.isDir(portable) {
			r.logger.Debug().Str("base_dir", portable).Msg("Portable layout detected")
			return r.locationsFor(portable, filepath.Join(r.cwd, PortableDataDir, ExtensionsDirName), true)
		}
	}

	base, err := r.profileBaseDir()
	if err != nil {
		r.logger.Warn().Err(err).Str("goos", r.goos).Msg("Cannot resolve application directory")
		return types.Locations{}
	}
	return r.locationsFor(base, r.profileExtensionsDir(), false)
}

func (r *Resolver) locationsFor(base, extensions string, portable bool) types.Locations {
	return types.Locations{
		BaseDir:       base,
		GlobalStore:   filepath.Join(base, GlobalStorageDir, r.layout.StoreFile),
		WorkspaceRoot: filepath.Join(base, WorkspaceStorageDir),
		SettingsFile:  filepath.Join(base, SettingsFileName),
		StorageFile:   filepath.Join(base, GlobalStorageDir, StorageFileName),
		ExtensionsDir: extensions,
		Portable:      portable,
	}
}

func (r *Resolver) profileBaseDir() (string, error) {
	if r.layout.AppDir == "" {
		return "", errors.New(errors.ErrResolutionGap, "no application directory configured")
	}

	switch r.goos {
	case "windows":
		appData := r.getenv(EnvAppData)
		if appData == "" {
			if r.home == "" {
				return "", errors.New(errors.ErrResolutionGap, "neither APPDATA nor a home directory is known")
			}
			appData = filepath.Join(r.home, "AppData", "Roaming")
		}
		return filepath.Join(appData, r.layout.AppDir, UserDir), nil
	case "darwin":
		if r.home == "" {
			return "", errors.New(errors.ErrResolutionGap, "home directory is unknown")
		}
		return filepath.Join(r.home, "Library", "Application Support", r.layout.AppDir, UserDir), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		configHome := r.getenv(EnvXDGConfigHome)
		if configHome == "" {
			configHome = xdg.ConfigHome
		}
		if configHome == "" {
			return "", errors.New(errors.ErrResolutionGap, "XDG config home is unknown")
		}
		return filepath.Join(configHome, r.layout.AppDir, UserDir), nil
	}

	return "", errors.Newf(errors.ErrResolutionGap, "unsupported operating system %q", r.goos).
		WithDetail("goos", r.goos)
}

func (r *Resolver) profileExtensionsDir() string {
	if r.home == "" || r.layout.DotDir == "" {
		return ""
	}
	return filepath.Join(r.home, r.layout.DotDir, ExtensionsDirName)
}

func (r *Resolver) isDir(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.IsDir()
}

// StoreFileName returns the key-value store file name this resolver uses.
func (r *Resolver) StoreFileName() string {
	return r.layout.StoreFile
}

// Static is a resolver that always returns the same locations.
type Static types.Locations

// Resolve implements the resolver contract.
func (s Static) Resolve() types.Locations {
	return types.Locations(s)
}

// LedgerPath returns where the ledger lives. Relative paths are taken
// relative to cwd.
func LedgerPath(configured, cwd string) string {
	if configured == "" {
		configured = ledger.DefaultFileName
	}
	configured = ExpandHome(configured, userHome(os.Getenv))
	if filepath.IsAbs(configured) || cwd == "" {
		return configured
	}
	return filepath.Join(cwd, configured)
}

// ConfigDir is storekeep's user configuration directory.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ExpandHome replaces a leading ~ with home.
func ExpandHome(path, home string) string {
	if home == "" || path == "" || path[0] != '~' {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}

func userHome(getenv func(string) string) string {
	if home := getenv(EnvHome); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
