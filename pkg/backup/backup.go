package backup

import (
	"io"
	"os"

	"github.com/devcraft/storekeep/pkg/errors"
	"github.com/devcraft/storekeep/pkg/internal/hashutil"
	"github.com/devcraft/storekeep/pkg/logging"
	"github.com/devcraft/storekeep/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultSuffix is appended to a store path to name its backup.
const DefaultSuffix = ".backup"

// Handle describes a completed (or skipped) backup.
type Handle struct {
	Source   string
	Path     string
	Checksum string
	Size     int64
	// NoOp is set when the source did not exist and nothing was copied.
	NoOp bool
}

// Info converts the handle into its result representation.
func (h Handle) Info() *types.BackupInfo {
	return &types.BackupInfo{
		Path:     h.Path,
		Checksum: h.Checksum,
		Size:     h.Size,
		NoOp:     h.NoOp,
	}
}

// Manager takes and restores single-slot backups.
type Manager struct {
	fs     types.FS
	suffix string
	verify bool
	logger zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithSuffix overrides the backup suffix.
func WithSuffix(suffix string) Option {
	return func(m *Manager) {
		if suffix != "" {
			m.suffix = suffix
		}
	}
}

// WithVerify toggles re-reading the backup to compare checksums.
func WithVerify(verify bool) Option {
	return func(m *Manager) { m.verify = verify }
}

// New creates a Manager operating on fs.
func New(fs types.FS, opts ...Option) *Manager {
	m := &Manager{
		fs:     fs,
		suffix: DefaultSuffix,
		verify: true,
		logger: logging.GetLogger("backup"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PathFor returns the backup path for a store.
func (m *Manager) PathFor(storePath string) string {
	return storePath + m.suffix
}

// Backup copies storePath to its backup slot. A missing store is a NoOp,
// not an error.
func (m *Manager) Backup(storePath string) (Handle, error) {
	info, err := m.fs.Stat(storePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Warn().Str("path", storePath).Msg("Store does not exist, skipping backup")
			return Handle{Source: storePath, NoOp: true}, nil
		}
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot stat %s", storePath).
			WithDetail("path", storePath)
	}
	if info.IsDir() {
		return Handle{}, errors.Newf(errors.ErrBackup, "%s is a directory", storePath).
			WithDetail("path", storePath)
	}

	dest := m.PathFor(storePath)
	h, err := m.copyVerified(storePath, dest)
	if err != nil {
		return Handle{}, err
	}

	m.logger.Info().
		Str("path", storePath).
		Str("backup", dest).
		Int64("size", h.Size).
		Msg("Created backup")
	return h, nil
}

// Restore puts the backup of storePath back in place.
func (m *Manager) Restore(storePath string) (Handle, error) {
	src := m.PathFor(storePath)
	if _, err := m.fs.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return Handle{}, errors.Newf(errors.ErrNotFound, "no backup at %s", src).
				WithDetail("path", src)
		}
		return Handle{}, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	tmp := storePath + ".restoring"
	h, err := m.copyVerified(src, tmp)
	if err != nil {
		return Handle{}, err
	}
	if err := m.fs.Rename(tmp, storePath); err != nil {
		_ = m.fs.Remove(tmp)
		return Handle{}, errors.Wrapf(err, errors.ErrFileWrite, "cannot move restored store into place")
	}

	h.Source, h.Path = src, storePath
	m.logger.Info().Str("path", storePath).Str("backup", src).Msg("Restored store from backup")
	return h, nil
}

// Displace moves the directory dir into its backup slot, replacing an older
// backup there. dir no longer exists afterwards. A missing dir is a NoOp.
func (m *Manager) Displace(dir string) (Handle, error) {
	info, err := m.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Handle{Source: dir, NoOp: true}, nil
		}
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot stat %s", dir).WithDetail("path", dir)
	}
	if !info.IsDir() {
		return Handle{}, errors.Newf(errors.ErrBackup, "%s is not a directory", dir).WithDetail("path", dir)
	}

	dest := m.PathFor(dir)
	if err := m.fs.RemoveAll(dest); err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot clear old backup %s", dest).WithDetail("path", dest)
	}
	if err := m.fs.Rename(dir, dest); err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot move %s aside", dir).WithDetail("path", dir)
	}

	m.logger.Info().Str("path", dir).Str("backup", dest).Msg("Moved directory into backup slot")
	return Handle{Source: dir, Path: dest}, nil
}

// Reinstate moves a displaced directory back to dir. It refuses to replace a
// dir that exists again.
func (m *Manager) Reinstate(dir string) (Handle, error) {
	src := m.PathFor(dir)
	info, err := m.fs.Stat(src)
	if err != nil || !info.IsDir() {
		return Handle{}, errors.Newf(errors.ErrNotFound, "no directory backup at %s", src).WithDetail("path", src)
	}
	if _, err := m.fs.Stat(dir); err == nil {
		return Handle{}, errors.Newf(errors.ErrInvalidInput, "%s exists, not replacing it", dir).WithDetail("path", dir)
	}
	if err := m.fs.Rename(src, dir); err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrFileWrite, "cannot move %s back", src)
	}

	m.logger.Info().Str("path", dir).Str("backup", src).Msg("Reinstated directory from backup")
	return Handle{Source: src, Path: dir}, nil
}

// HasBackup reports whether a backup exists for storePath.
func (m *Manager) HasBackup(storePath string) bool {
	info, err := m.fs.Stat(m.PathFor(storePath))
	return err == nil && !info.IsDir()
}

// copyVerified streams src to dest, syncs it and, when verification is on,
// re-hashes dest. dest is removed on any failure.
func (m *Manager) copyVerified(src, dest string) (h Handle, err error) {
	defer func() {
		if err != nil {
			_ = m.fs.Remove(dest)
		}
	}()

	in, err := m.fs.Open(src)
	if err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot open %s", src).WithDetail("path", src)
	}
	defer func() { _ = in.Close() }()

	out, err := m.fs.Create(dest)
	if err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot create %s", dest).WithDetail("path", dest)
	}

	hash := hashutil.New()
	n, copyErr := io.Copy(io.MultiWriter(out, hash), in)
	sum := hashutil.Sum(hash)

	if copyErr != nil {
		_ = out.Close()
		return Handle{}, errors.Wrapf(copyErr, errors.ErrBackup, "copy %s to %s failed", src, dest)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot sync %s", dest)
	}
	if err := out.Close(); err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot close %s", dest)
	}

	if m.verify {
		got, err := hashutil.CalculateFileChecksum(m.fs, dest)
		if err != nil {
			return Handle{}, errors.Wrapf(err, errors.ErrBackup, "cannot verify %s", dest)
		}
		if got != sum {
			return Handle{}, errors.Newf(errors.ErrBackup, "backup %s does not match source", dest).
				WithDetail("expected", sum).
				WithDetail("actual", got)
		}
	}

	return Handle{Source: src, Path: dest, Checksum: sum, Size: n}, nil
}
