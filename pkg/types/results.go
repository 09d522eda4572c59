package types

import (
	"sort"
	"time"

	"github.com/devcraft/storekeep/pkg/errors"
)

// StoreKind identifies what a cleaning target is.
type StoreKind string

const (
	StoreKindGlobal        StoreKind = "global"
	StoreKindWorkspace     StoreKind = "workspace"
	StoreKindWorkspaceRoot StoreKind = "workspace_root"
)

// GlobalStoreID is the identifier used for the global store in results.
const GlobalStoreID = "global"

// ErrorKey is the PerStoreErrors key for a store. Workspace keys carry their
// kind so a workspace directory named like another target cannot collide.
func ErrorKey(kind StoreKind, id string) string {
	if kind == StoreKindWorkspace {
		return string(kind) + ":" + id
	}
	return id
}

// BackupInfo describes the backup taken before a store was mutated.
type BackupInfo struct {
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Size     int64  `json:"size,omitempty" yaml:"size,omitempty"`
	NoOp     bool   `json:"noop,omitempty" yaml:"noop,omitempty"`
}

// StoreOutcome is the per-store breakdown of a cleaning run.
type StoreOutcome struct {
	ID              string      `json:"id" yaml:"id"`
	Path            string      `json:"path" yaml:"path"`
	Kind            StoreKind   `json:"kind" yaml:"kind"`
	Existed         bool        `json:"existed" yaml:"existed"`
	Processed       bool        `json:"processed" yaml:"processed"`
	Removed         bool        `json:"removed,omitempty" yaml:"removed,omitempty"`
	RowsDeleted     int         `json:"rows_deleted" yaml:"rows_deleted"`
	PatternsSkipped []string    `json:"patterns_skipped,omitempty" yaml:"patterns_skipped,omitempty"`
	Backup          *BackupInfo `json:"backup,omitempty" yaml:"backup,omitempty"`
	Err             error       `json:"-" yaml:"-"`
	Error           string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// CleanResult aggregates a cleaning run over every store.
type CleanResult struct {
	Tier              Tier             `json:"tier" yaml:"tier"`
	DryRun            bool             `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	ProtectionEnabled bool             `json:"protection_enabled" yaml:"protection_enabled"`
	StoresProcessed   int              `json:"stores_processed" yaml:"stores_processed"`
	RowsDeleted       int              `json:"rows_deleted" yaml:"rows_deleted"`
	Stores            []StoreOutcome   `json:"stores" yaml:"stores"`
	PerStoreErrors    map[string]error `json:"-" yaml:"-"` // keyed by ErrorKey
	StartedAt         time.Time        `json:"started_at" yaml:"started_at"`
	Duration          time.Duration    `json:"duration" yaml:"duration"`
}

// Attempted is the number of existing stores the run tried to process.
func (r *CleanResult) Attempted() int {
	n := 0
	for _, s := range r.Stores {
		if s.Existed {
			n++
		}
	}
	return n
}

// Success reports whether the run counts as successful: at least one store
// was processed, or nothing existed and nothing failed.
func (r *CleanResult) Success() bool {
	if r.StoresProcessed > 0 {
		return true
	}
	return len(r.PerStoreErrors) == 0
}

// Err returns a NO_STORES_PROCESSED error when every attempted store failed.
func (r *CleanResult) Err() error {
	if r.Success() {
		return nil
	}
	ids := make([]string, 0, len(r.PerStoreErrors))
	for id := range r.PerStoreErrors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	op := string(r.Tier) + " clean"
	if r.Tier == "" {
		op = "restore"
	}
	return errors.Newf(errors.ErrNoStoresProcessed, "%s failed on all %d store(s)", op, len(ids)).
		WithDetail("stores", ids)
}
