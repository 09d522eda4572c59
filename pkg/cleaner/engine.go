package cleaner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/devcraft/storekeep/pkg/backup"
	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/kvstore"
	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultStoreFile is the store file name looked for in each workspace directory.
const DefaultStoreFile = "state.vscdb"

// WorkspaceRootID identifies the workspace storage directory in results.
const WorkspaceRootID = "workspace_root"

// sqlite sidecar files removed together with a store file
var sidecarSuffixes = []string{"-wal", "-shm", "-journal"}

// Resolver supplies the target application's locations.
type Resolver interface {
	Resolve() types.Locations
}

// Options tune a single run.
type Options struct {
	// DryRun counts candidates without backups, mutation or ledger updates
	DryRun bool
}

// Engine runs cleaning tiers.
type Engine struct {
	resolver  Resolver
	ledger    *ledger.Ledger
	backups   *backup.Manager
	open      kvstore.Opener
	fs        types.FS
	storeFile string
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStoreFile sets the store file name expected in workspace directories.
func WithStoreFile(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.storeFile = name
		}
	}
}

// WithClock replaces time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine. The ledger is shared with the caller and updated
// after every non-dry run.
func New(resolver Resolver, l *ledger.Ledger, backups *backup.Manager, open kvstore.Opener, fs types.FS, opts ...Option) *Engine {
	e := &Engine{
		resolver:  resolver,
		ledger:    l,
		backups:   backups,
		open:      open,
		fs:        fs,
		storeFile: DefaultStoreFile,
		now:       time.Now,
		logger:    logging.GetLogger("cleaner"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clean runs tier over every store.
func (e *Engine) Clean(tier types.Tier, protection bool) *types.CleanResult {
	return e.CleanWithOptions(tier, protection, Options{})
}

// CleanWithOptions runs tier over every store with per-run options.
func (e *Engine) CleanWithOptions(tier types.Tier, protection bool, opts Options) *types.CleanResult {
	logger := e.logger.With().
		Str("run", uuid.NewString()).
		Str("tier", tier.String()).
		Bool("protection", protection).
		Bool("dry_run", opts.DryRun).
		Logger()
	done := logging.LogOperationStart(logger, "clean")
	defer done()

	start := e.now()
	result := &types.CleanResult{
		Tier:              tier,
		DryRun:            opts.DryRun,
		ProtectionEnabled: protection,
		Stores:            []types.StoreOutcome{},
		PerStoreErrors:    map[string]error{},
		StartedAt:         start,
	}

	loc := e.resolver.Resolve()
	if loc.GlobalStore == "" && loc.WorkspaceRoot == "" {
		logger.Warn().Msg("No store locations resolved, nothing to clean")
	}
	workspaces := e.discoverWorkspaces(loc.WorkspaceRoot, logger)

	run := &run{Engine: e, logger: logger, tier: tier, protection: protection, dryRun: opts.DryRun, result: result}
	if tier == types.TierComplete {
		run.complete(loc, workspaces)
	} else {
		run.selective(loc, workspaces)
	}

	if !opts.DryRun && e.ledger != nil {
		e.ledger.MarkCleaned(tier)
		if tier == types.TierComplete {
			e.ledger.Reset()
		}
	}

	result.Duration = e.now().Sub(start)
	logger.Info().
		Int("stores_processed", result.StoresProcessed).
		Int("rows_deleted", result.RowsDeleted).
		Int("errors", len(result.PerStoreErrors)).
		Msg("Cleaning finished")
	return result
}

type target struct {
	id   string
	path string
	kind types.StoreKind
}

// discoverWorkspaces scans one level below root for directories holding a
// store file. A missing root yields no workspaces.
func (e *Engine) discoverWorkspaces(root string, logger zerolog.Logger) []target {
	if root == "" {
		return nil
	}
	entries, err := e.fs.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("root", root).Msg("Cannot list workspace storage")
		}
		return nil
	}

	var found []target
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := joinStore(root, entry.Name(), e.storeFile)
		if !e.isFile(path) {
			continue
		}
		found = append(found, target{id: entry.Name(), path: path, kind: types.StoreKindWorkspace})
	}
	logger.Debug().Str("root", root).Int("workspaces", len(found)).Msg("Discovered workspace stores")
	return found
}

func joinStore(root, workspace, file string) string {
	return filepath.Join(root, workspace, file)
}

func (e *Engine) isFile(path string) bool {
	info, err := e.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func (e *Engine) isDir(path string) bool {
	info, err := e.fs.Stat(path)
	return err == nil && info.IsDir()
}

// run carries the state of one CleanWithOptions call.
type run struct {
	*Engine
	logger     zerolog.Logger
	tier       types.Tier
	protection bool
	dryRun     bool
	result     *types.CleanResult
}

// outcomeFor runs fn for t and folds the outcome into the result. A failure
// is recorded against t and never stops the caller from moving on. It returns
// the outcome's index in result.Stores.
func (r *run) outcomeFor(t target, fn func(out *types.StoreOutcome) error) int {
	out := types.StoreOutcome{ID: t.id, Path: t.path, Kind: t.kind}
	storeLog := r.logger.With().Str("store", t.id).Str("path", t.path).Logger()

	if err := fn(&out); err != nil {
		out.Err = err
		out.Error = err.Error()
		out.Processed = false
		r.result.PerStoreErrors[types.ErrorKey(t.kind, t.id)] = err
		storeLog.Error().Err(err).Str("code", string(errors.GetErrorCode(err))).Msg("Store failed, continuing")
	} else if out.Processed {
		r.result.StoresProcessed++
		r.result.RowsDeleted += out.RowsDeleted
		storeLog.Info().Int("rows", out.RowsDeleted).Strs("skipped", out.PatternsSkipped).Msg("Store cleaned")
	} else if !out.Existed {
		storeLog.Debug().Msg("Store absent, skipped")
	}

	r.result.Stores = append(r.result.Stores, out)
	return len(r.result.Stores) - 1
}

func (r *run) backup(out *types.StoreOutcome) error {
	if r.dryRun {
		return nil
	}
	h, err := r.backups.Backup(out.Path)
	if err != nil {
		return err
	}
	out.Backup = h.Info()
	return nil
}
