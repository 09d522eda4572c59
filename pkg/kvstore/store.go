package kvstore

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/devcraft/storekeep/pkg/errors"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// DefaultTable is the table the target application keeps its rows in.
const DefaultTable = "ItemTable"

// DefaultBusyTimeout in milliseconds.
const DefaultBusyTimeout = 5000

// Store is the generic open/query/delete/commit/close surface the cleaning
// engine works against.
type Store interface {
	Count(pattern string) (int, error)
	CountOverlap(pattern, protected string) (int, error)
	MatchingKeys(pattern string) ([]string, error)
	Delete(pattern string) (int, error)
	Begin() error
	Commit() error
	Rollback() error
	Close() error
}

// Opener opens the store at path.
type Opener func(path string) (Store, error)

// Options configure how stores are opened.
type Options struct {
	Table       string
	BusyTimeout int
}

// NewOpener returns an Opener backed by SQLite.
func NewOpener(opts Options) Opener {
	return func(path string) (Store, error) {
		return Open(path, opts)
	}
}

// SQLiteStore is a Store backed by a SQLite file.
type SQLiteStore struct {
	db    *sql.DB
	tx    *sql.Tx
	path  string
	table string
}

var _ Store = (*SQLiteStore)(nil)

// Open opens an existing store file. It never creates one: a missing file is
// reported as a STORE_ACCESS error with a NOT_FOUND cause.
func Open(path string, opts Options) (*SQLiteStore, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = DefaultBusyTimeout
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreAccess, "cannot stat store %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.ErrStoreAccess, "store %s is a directory", path).
			WithDetail("path", path)
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreAccess, "failed to open store %s", path)
	}

	// SQLite only supports one writer at a time, and pragmas are per connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, path: path, table: opts.Table}
	if err := s.configure(opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) configure(opts Options) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeout),
		"PRAGMA case_sensitive_like = ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return errors.Wrapf(err, errors.ErrStoreAccess, "failed to execute %q on %s", pragma, s.path)
		}
	}

	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", s.table,
	).Scan(&n)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreAccess, "%s is not a readable store", s.path)
	}
	if n == 0 {
		return errors.Newf(errors.ErrStoreAccess, "%s has no %s table", s.path, s.table).
			WithDetail("path", s.path).
			WithDetail("table", s.table)
	}
	return nil
}

// Path returns the store file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *SQLiteStore) quotedTable() string {
	return `"` + strings.ReplaceAll(s.table, `"`, `""`) + `"`
}

// Count returns the number of rows whose key matches pattern.
func (s *SQLiteStore) Count(pattern string) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE key LIKE ? ESCAPE '\'`, s.quotedTable())
	if err := s.q().QueryRow(query, pattern).Scan(&n); err != nil {
		return 0, s.wrap(err, "count", pattern)
	}
	return n, nil
}

// CountOverlap returns the number of rows matching both pattern and protected.
func (s *SQLiteStore) CountOverlap(pattern, protected string) (int, error) {
	var n int
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE key LIKE ? ESCAPE '\' AND key LIKE ? ESCAPE '\'`, s.quotedTable())
	if err := s.q().QueryRow(query, pattern, protected).Scan(&n); err != nil {
		return 0, s.wrap(err, "count overlap", pattern).WithDetail("protected", protected)
	}
	return n, nil
}

// MatchingKeys returns the sorted keys matching pattern.
func (s *SQLiteStore) MatchingKeys(pattern string) ([]string, error) {
	query := fmt.Sprintf(`SELECT key FROM %s WHERE key LIKE ? ESCAPE '\'`, s.quotedTable())
	rows, err := s.q().Query(query, pattern)
	if err != nil {
		return nil, s.wrap(err, "list keys", pattern)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, s.wrap(err, "scan key", pattern)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err, "list keys", pattern)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes rows matching pattern and returns how many were removed.
func (s *SQLiteStore) Delete(pattern string) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key LIKE ? ESCAPE '\'`, s.quotedTable())
	res, err := s.q().Exec(query, pattern)
	if err != nil {
		return 0, s.wrap(err, "delete", pattern)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.wrap(err, "rows affected", pattern)
	}
	return int(n), nil
}

// Begin starts a transaction that subsequent calls run inside.
func (s *SQLiteStore) Begin() error {
	if s.tx != nil {
		return errors.Newf(errors.ErrInternal, "transaction already open on %s", s.path)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreAccess, "cannot begin transaction on %s", s.path)
	}
	s.tx = tx
	return nil
}

// Commit commits the open transaction. Without one it is a no-op.
func (s *SQLiteStore) Commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, errors.ErrStoreAccess, "cannot commit %s", s.path)
	}
	return nil
}

// Rollback discards the open transaction. Without one it is a no-op.
func (s *SQLiteStore) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return errors.Wrapf(err, errors.ErrStoreAccess, "cannot roll back %s", s.path)
	}
	return nil
}

// Close rolls back any uncommitted work and closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	rbErr := s.Rollback()
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreAccess, "cannot close %s", s.path)
	}
	return rbErr
}

func (s *SQLiteStore) wrap(err error, op, pattern string) *errors.KeepError {
	return errors.Wrapf(err, errors.ErrStoreAccess, "%s failed on %s", op, s.path).
		WithDetail("path", s.path).
		WithDetail("pattern", pattern)
}
