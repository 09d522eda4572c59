package cleaner

import (
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/kvstore"
	"github.com/devcraft/storekeep/pkg/patterns"
	"github.com/devcraft/storekeep/pkg/types"
)

// selective runs the smart or deep tier: row deletion by pattern.
func (r *run) selective(loc types.Locations, workspaces []target) {
	var targets []target
	if loc.GlobalStore != "" {
		targets = append(targets, target{id: types.GlobalStoreID, path: loc.GlobalStore, kind: types.StoreKindGlobal})
	}
	targets = append(targets, workspaces...)

	for _, t := range targets {
		r.outcomeFor(t, r.cleanStore)
	}
}

func (r *run) cleanStore(out *types.StoreOutcome) (err error) {
	if !r.isFile(out.Path) {
		return nil
	}
	out.Existed = true

	if err := r.backup(out); err != nil {
		return err
	}

	store, err := r.open(out.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrStoreAccess, "cannot close store").WithDetail("path", out.Path)
		}
	}()

	if r.dryRun {
		return r.preview(store, out)
	}

	if err := store.Begin(); err != nil {
		return err
	}
	for _, pattern := range patterns.ForTier(r.tier) {
		skip, err := r.protected(store, pattern)
		if err != nil {
			_ = store.Rollback()
			return err
		}
		if skip {
			out.PatternsSkipped = append(out.PatternsSkipped, pattern)
			continue
		}

		n, err := store.Delete(pattern)
		if err != nil {
			_ = store.Rollback()
			return err
		}
		if n > 0 {
			r.logger.Debug().Str("store", out.ID).Str("pattern", pattern).Int("rows", n).Msg("Deleted rows")
		}
		out.RowsDeleted += n
	}
	if err := store.Commit(); err != nil {
		return err
	}

	out.Processed = true
	return nil
}

// preview counts the distinct keys a real run would delete.
func (r *run) preview(store kvstore.Store, out *types.StoreOutcome) error {
	seen := map[string]bool{}
	for _, pattern := range patterns.ForTier(r.tier) {
		skip, err := r.protected(store, pattern)
		if err != nil {
			return err
		}
		if skip {
			out.PatternsSkipped = append(out.PatternsSkipped, pattern)
			continue
		}

		keys, err := store.MatchingKeys(pattern)
		if err != nil {
			return err
		}
		for _, k := range keys {
			seen[k] = true
		}
	}
	out.RowsDeleted = len(seen)
	out.Processed = true
	return nil
}

// protected reports whether pattern must be skipped because its matches
// overlap a protected pattern. Only the deep tier honours protection.
func (r *run) protected(store kvstore.Store, pattern string) (bool, error) {
	if r.tier != types.TierDeep || !r.protection {
		return false, nil
	}
	for _, p := range patterns.ProtectedPatterns() {
		n, err := store.CountOverlap(pattern, p)
		if err != nil {
			return false, err
		}
		if n > 0 {
			r.logger.Info().
				Str("pattern", pattern).
				Str("protected", p).
				Int("overlap", n).
				Msg("Skipping pattern that overlaps protected keys")
			return true, nil
		}
	}
	return false, nil
}
