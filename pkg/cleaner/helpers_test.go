package cleaner_test

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/devcraft/storekeep/pkg/backup"
	"github.com/devcraft/storekeep/pkg/cleaner"
	"github.com/devcraft/storekeep/pkg/filesystem"
	"github.com/devcraft/storekeep/pkg/internal/hashutil"
	"github.com/devcraft/storekeep/pkg/kvstore"
	"github.com/devcraft/storekeep/pkg/kvstore/kvtest"
	"github.com/devcraft/storekeep/pkg/ledger"
	"github.com/devcraft/storekeep/pkg/paths"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	base   string
	loc    types.Locations
	fs     types.FS
	ledger *ledger.Ledger
	engine *cleaner.Engine
}

type envOption func(*envConfig)

type envConfig struct {
	backupFS types.FS
}

func withBackupFS(wrap func(types.FS) types.FS) envOption {
	return func(c *envConfig) { c.backupFS = wrap(filesystem.NewOS()) }
}

// newEnv lays out a target application directory. A nil global map leaves
// the global store absent.
func newEnv(t *testing.T, global map[string]string, workspaces map[string]map[string]string, opts ...envOption) *env {
	t.Helper()

	cfg := envConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := t.TempDir()
	loc := types.Locations{
		BaseDir:       base,
		GlobalStore:   filepath.Join(base, "globalStorage", "state.vscdb"),
		WorkspaceRoot: filepath.Join(base, "workspaceStorage"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(loc.GlobalStore), 0755))
	if global != nil {
		kvtest.CreateStore(t, loc.GlobalStore, global)
	}
	for id, rows := range workspaces {
		kvtest.CreateStore(t, filepath.Join(loc.WorkspaceRoot, id, "state.vscdb"), rows)
	}

	fs := filesystem.NewOS()
	backupFS := cfg.backupFS
	if backupFS == nil {
		backupFS = fs
	}

	l := ledger.Load(fs, filepath.Join(base, "storekeep_state.json"),
		ledger.WithClock(func() time.Time { return testNow }))

	e := &env{base: base, loc: loc, fs: fs, ledger: l}
	e.engine = newEngine(e, backupFS)
	return e
}

func newEngine(e *env, backupFS types.FS) *cleaner.Engine {
	return cleaner.New(paths.Static(e.loc), e.ledger, backup.New(backupFS), kvstore.NewOpener(kvstore.Options{}), e.fs,
		cleaner.WithClock(func() time.Time { return testNow }))
}

// newEngineFor rebuilds the engine after e.loc was changed.
func newEngineFor(e *env) *cleaner.Engine {
	return newEngine(e, e.fs)
}

// failingCreateFS refuses to create files, simulating a full disk.
type failingCreateFS struct {
	types.FS
}

func (f failingCreateFS) Create(name string) (types.WriteSyncCloser, error) {
	return nil, &os.PathError{Op: "create", Path: name, Err: syscall.ENOSPC}
}

func (e *env) workspaceStore(id string) string {
	return filepath.Join(e.loc.WorkspaceRoot, id, "state.vscdb")
}

func writeGarbage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database ", 64)), 0644))
}

func checksum(t *testing.T, path string) string {
	t.Helper()
	sum, err := hashutil.CalculateFileChecksum(filesystem.NewOS(), path)
	require.NoError(t, err)
	return sum
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func outcome(t *testing.T, r *types.CleanResult, id string) types.StoreOutcome {
	t.Helper()
	for _, s := range r.Stores {
		if s.ID == id {
			return s
		}
	}
	require.Failf(t, "missing outcome", "no outcome for store %q", id)
	return types.StoreOutcome{}
}

func keySet(keys []string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

// deleted returns the keys present in before but not in after.
func deleted(before map[string]string, after []string) map[string]bool {
	remaining := keySet(after)
	out := map[string]bool{}
	for k := range before {
		if !remaining[k] {
			out[k] = true
		}
	}
	return out
}
