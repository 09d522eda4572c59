// Package paths resolves where the target application keeps its data and
// where storekeep keeps its own files.
//
// # Target locations
//
// The resolver looks for a portable layout first: a data/user-data/User
// directory below the invocation directory. When it exists, every location
// lives below it and extensions live in data/extensions. Otherwise the
// per-OS profile layout is used:
//
//   - windows: %APPDATA%/<app>/User
//   - darwin:  ~/Library/Application Support/<app>/User
//   - linux:   $XDG_CONFIG_HOME/<app>/User
//
// STOREKEEP_BASE_DIR overrides the user directory outright.
//
// An empty field in the returned types.Locations means "not found". Callers
// skip it; it is never an error.
//
// # storekeep's own files
//
// The ledger lives next to the invocation directory unless configured with
// an absolute path. Logs go to $XDG_STATE_HOME/storekeep.
package paths
