package status

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/types"
)

// Resolver supplies the target application's locations.
type Resolver interface {
	Resolve() types.Locations
}

// Plugin is an installed extension directory matching the marker.
type Plugin struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Stores is the store inventory.
type Stores struct {
	GlobalPresent   bool     `json:"global_present" yaml:"global_present"`
	GlobalBackup    bool     `json:"global_backup" yaml:"global_backup"`
	Workspaces      []string `json:"workspaces" yaml:"workspaces"`
	WorkspaceBackup bool     `json:"workspace_backup" yaml:"workspace_backup"`
}

// Report is a snapshot of the system state.
type Report struct {
	Initialized         bool                  `json:"initialized" yaml:"initialized"`
	Ready               bool                  `json:"ready" yaml:"ready"`
	ConfigVersion       string                `json:"config_version" yaml:"config_version"`
	LastConfigTime      *time.Time            `json:"last_config_time" yaml:"last_config_time"`
	LastCleanTime       *time.Time            `json:"last_clean_time" yaml:"last_clean_time"`
	LastClean           map[string]*time.Time `json:"last_clean" yaml:"last_clean"`
	InstalledComponents []string              `json:"installed_components" yaml:"installed_components"`
	ProtectionEnabled   bool                  `json:"protection_enabled" yaml:"protection_enabled"`
	Plugins             []Plugin              `json:"plugins" yaml:"plugins"`
	Locations           types.Locations       `json:"locations" yaml:"locations"`
	Stores              Stores                `json:"stores" yaml:"stores"`
}

// PluginInstalled reports whether any plugin matched.
func (r *Report) PluginInstalled() bool {
	return len(r.Plugins) > 0
}

// Reporter builds status reports.
type Reporter struct {
	ledger       *ledger.Ledger
	resolver     Resolver
	fs           types.FS
	marker       string
	storeFile    string
	backupSuffix string
}

// New creates a Reporter. marker is matched case-insensitively against
// extension directory names.
func New(l *ledger.Ledger, resolver Resolver, fs types.FS, marker, storeFile, backupSuffix string) *Reporter {
	return &Reporter{
		ledger:       l,
		resolver:     resolver,
		fs:           fs,
		marker:       strings.ToLower(marker),
		storeFile:    storeFile,
		backupSuffix: backupSuffix,
	}
}

// Report gathers the current status. It never writes the ledger: only a
// complete setup run marks the system initialized.
func (r *Reporter) Report() *Report {
	ready := r.ledger.IsComponentInstalled(ledger.ComponentEnvironment) &&
		r.ledger.IsComponentInstalled(ledger.ComponentSettings)

	state := r.ledger.State()
	loc := r.resolver.Resolve()

	report := &Report{
		Initialized:         state.Initialized,
		Ready:               state.Initialized && ready,
		ConfigVersion:       state.ConfigVersion,
		LastConfigTime:      state.LastConfigTime,
		LastCleanTime:       state.LastCleanTime,
		LastClean:           map[string]*time.Time{},
		InstalledComponents: r.ledger.InstalledComponents(),
		ProtectionEnabled:   state.ProtectionEnabled,
		Plugins:             r.scanPlugins(loc.ExtensionsDir),
		Locations:           loc,
		Stores:              r.inventory(loc),
	}
	for _, tier := range types.AllTiers {
		report.LastClean[tier.String()] = state.LastClean(tier)
	}
	if report.InstalledComponents == nil {
		report.InstalledComponents = []string{}
	}
	return report
}

func (r *Reporter) scanPlugins(dir string) []Plugin {
	plugins := []Plugin{}
	if dir == "" || r.marker == "" {
		return plugins
	}
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger := logging.GetLogger("status")
			logger.Warn().Err(err).Str("dir", dir).Msg("Cannot scan extensions")
		}
		return plugins
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.Contains(strings.ToLower(entry.Name()), r.marker) {
			plugins = append(plugins, Plugin{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())})
		}
	}
	return plugins
}

func (r *Reporter) inventory(loc types.Locations) Stores {
	s := Stores{Workspaces: []string{}}
	if loc.GlobalStore != "" {
		s.GlobalPresent = r.isFile(loc.GlobalStore)
		s.GlobalBackup = r.isFile(loc.GlobalStore + r.backupSuffix)
	}
	if loc.WorkspaceRoot == "" {
		return s
	}
	s.WorkspaceBackup = r.isDir(loc.WorkspaceRoot + r.backupSuffix)

	entries, err := r.fs.ReadDir(loc.WorkspaceRoot)
	if err != nil {
		return s
	}
	for _, entry := range entries {
		if entry.IsDir() && r.isFile(filepath.Join(loc.WorkspaceRoot, entry.Name(), r.storeFile)) {
			s.Workspaces = append(s.Workspaces, entry.Name())
		}
	}
	return s
}

func (r *Reporter) isFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Reporter) isDir(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.IsDir()
}
