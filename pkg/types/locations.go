package types

// Locations are the named filesystem locations of the target application.
// An empty field means the location could not be determined and must be
// treated as "nothing there", never as an error.
type Locations struct {
	// BaseDir is the application's user directory (the one holding settings.json).
	BaseDir string `json:"base_dir" yaml:"base_dir"`

	// GlobalStore is the single global key-value store file.
	GlobalStore string `json:"global_store" yaml:"global_store"`

	// WorkspaceRoot contains one subdirectory per workspace, each holding a store file.
	WorkspaceRoot string `json:"workspace_root" yaml:"workspace_root"`

	// SettingsFile is the user settings.json file.
	SettingsFile string `json:"settings_file" yaml:"settings_file"`

	// StorageFile is the application's storage.json, if any.
	StorageFile string `json:"storage_file" yaml:"storage_file"`

	// ExtensionsDir is where installed extensions live.
	ExtensionsDir string `json:"extensions_dir" yaml:"extensions_dir"`

	// Portable is true when the self-contained layout was detected.
	Portable bool `json:"portable" yaml:"portable"`
}

// IsEmpty reports whether no location could be resolved.
func (l Locations) IsEmpty() bool {
	return l.BaseDir == "" && l.GlobalStore == "" && l.WorkspaceRoot == ""
}
