package hashutil

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"github.com/devcraft/storekeep/pkg/types"
)

// New returns the hash used for all storekeep checksums.
func New() hash.Hash {
	return sha256.New()
}

// Sum formats the current digest of h as a checksum string.
func Sum(h hash.Hash) string {
	return fmt.Sprintf("sha256:%x", h.Sum(nil))
}

// CalculateFileChecksum calculates the SHA256 checksum of a file
func CalculateFileChecksum(fs types.FS, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	return CalculateChecksum(file)
}

// CalculateChecksum calculates the SHA256 checksum of everything read from r
func CalculateChecksum(r io.Reader) (string, error) {
	h := New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return Sum(h), nil
}
