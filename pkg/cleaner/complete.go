package cleaner

import (
	"os"
	"path/filepath"

	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/internal/hashutil"
	"github.com/devcraft/storekeep/pkg/types"
)

// complete removes the global store file and the whole workspace storage
// directory. The global store is copied to its backup slot first. The
// workspace directory is moved into its own backup slot as a whole, which
// removes it and keeps every workspace store recoverable in one step.
func (r *run) complete(loc types.Locations, workspaces []target) {
	if loc.GlobalStore != "" {
		r.outcomeFor(target{id: types.GlobalStoreID, path: loc.GlobalStore, kind: types.StoreKindGlobal}, r.removeGlobal)
	}

	if loc.WorkspaceRoot == "" {
		return
	}

	// Record each workspace store with the checksum it had before removal.
	var members []int
	for _, t := range workspaces {
		members = append(members, r.outcomeFor(t, func(out *types.StoreOutcome) error {
			out.Existed = true
			if r.dryRun {
				return nil
			}
			sum, err := hashutil.CalculateFileChecksum(r.fs, out.Path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrBackup, "cannot checksum %s", out.Path).WithDetail("path", out.Path)
			}
			out.Backup = &types.BackupInfo{Checksum: sum}
			return nil
		}))
	}

	root := target{id: WorkspaceRootID, path: loc.WorkspaceRoot, kind: types.StoreKindWorkspaceRoot}
	r.outcomeFor(root, func(out *types.StoreOutcome) error {
		if !r.isDir(out.Path) {
			return nil
		}
		out.Existed = true

		if !r.dryRun {
			h, err := r.backups.Displace(out.Path)
			if err != nil {
				return err
			}
			out.Backup = h.Info()
			out.Removed = true

			for _, idx := range members {
				ws := &r.result.Stores[idx]
				if ws.Backup == nil {
					continue
				}
				ws.Removed = true
				ws.Backup.Path = filepath.Join(h.Path, ws.ID, filepath.Base(ws.Path))
			}
		}
		out.Processed = true
		return nil
	})
}

func (r *run) removeGlobal(out *types.StoreOutcome) error {
	if !r.isFile(out.Path) {
		return nil
	}
	out.Existed = true

	if err := r.backup(out); err != nil {
		return err
	}

	if !r.dryRun {
		if err := r.fs.Remove(out.Path); err != nil {
			return errors.Wrapf(err, errors.ErrStoreAccess, "cannot remove %s", out.Path).
				WithDetail("path", out.Path)
		}
		for _, suffix := range sidecarSuffixes {
			if err := r.fs.Remove(out.Path + suffix); err != nil && !os.IsNotExist(err) {
				r.logger.Warn().Err(err).Str("path", out.Path+suffix).Msg("Cannot remove store sidecar file")
			}
		}
		out.Removed = true
	}
	out.Processed = true
	return nil
}
