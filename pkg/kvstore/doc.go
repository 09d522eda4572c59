// Package kvstore opens the target application's embedded key-value stores.
//
// A store is a SQLite file with a single logical table of (key TEXT UNIQUE,
// value BLOB) rows. storekeep never inserts or updates rows; it only counts
// and deletes them by LIKE pattern. The pure-Go modernc.org/sqlite driver is
// used so the binary needs no cgo toolchain.
//
// # Connection settings
//
//   - one connection only: the application assumes a single writer, and
//     per-connection pragmas must apply to every statement
//   - busy_timeout=5000: a store locked by the running application fails
//     that store instead of hanging the run
//   - case_sensitive_like=ON: key patterns are case-sensitive
package kvstore
