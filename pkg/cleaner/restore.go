package cleaner

import (
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/types"
)

// Restore puts every available backup back in place: the global store, each
// workspace store, and a workspace directory moved aside by the complete
// tier. Stores without a backup are reported as not existing. The ledger is
// left alone.
func (e *Engine) Restore() *types.CleanResult {
	logger := e.logger.With().Str("operation", "restore").Logger()
	result := &types.CleanResult{
		Stores:         []types.StoreOutcome{},
		PerStoreErrors: map[string]error{},
		StartedAt:      e.now(),
	}
	r := &run{Engine: e, logger: logger, result: result}

	loc := e.resolver.Resolve()

	// A reinstated directory already holds the newest workspace stores.
	reinstated := false
	if loc.WorkspaceRoot != "" && !e.isDir(loc.WorkspaceRoot) && e.isDir(e.backups.PathFor(loc.WorkspaceRoot)) {
		root := target{id: WorkspaceRootID, path: loc.WorkspaceRoot, kind: types.StoreKindWorkspaceRoot}
		r.outcomeFor(root, func(out *types.StoreOutcome) error {
			out.Existed = true
			h, err := e.backups.Reinstate(out.Path)
			if err != nil {
				return err
			}
			out.Backup = h.Info()
			out.Processed = true
			reinstated = true
			return nil
		})
	}

	var targets []target
	if loc.GlobalStore != "" {
		targets = append(targets, target{id: types.GlobalStoreID, path: loc.GlobalStore, kind: types.StoreKindGlobal})
	}
	if !reinstated {
		targets = append(targets, e.discoverBackups(loc.WorkspaceRoot)...)
	}

	for _, t := range targets {
		r.outcomeFor(t, func(out *types.StoreOutcome) error {
			if !e.backups.HasBackup(out.Path) {
				return nil
			}
			out.Existed = true
			h, err := e.backups.Restore(out.Path)
			if err != nil {
				if errors.IsErrorCode(err, errors.ErrNotFound) {
					out.Existed = false
					return nil
				}
				return err
			}
			out.Backup = h.Info()
			out.Processed = true
			return nil
		})
	}

	result.Duration = e.now().Sub(result.StartedAt)
	logger.Info().Int("restored", result.StoresProcessed).Msg("Restore finished")
	return result
}

// discoverBackups lists workspace directories holding a store backup, whether
// or not the store itself still exists.
func (e *Engine) discoverBackups(root string) []target {
	if root == "" {
		return nil
	}
	entries, err := e.fs.ReadDir(root)
	if err != nil {
		return nil
	}
	var found []target
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := joinStore(root, entry.Name(), e.storeFile)
		if e.backups.HasBackup(path) {
			found = append(found, target{id: entry.Name(), path: path, kind: types.StoreKindWorkspace})
		}
	}
	return found
}
