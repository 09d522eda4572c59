package types

import (
	"io"
	"io/fs"
)

// FS is the filesystem interface required for storekeep operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Open(name string) (io.ReadCloser, error)
	Create(name string) (WriteSyncCloser, error)

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// WriteSyncCloser is a writable file handle that can be flushed to stable storage.
type WriteSyncCloser interface {
	io.WriteCloser
	Sync() error
}
