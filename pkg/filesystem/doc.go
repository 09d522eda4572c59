// Package filesystem provides filesystem implementations for storekeep.
//
// This package contains implementations of the types.FS interface: the
// standard OS filesystem used in production and an afero-backed filesystem
// used by tests that do not need real files on disk.
package filesystem
