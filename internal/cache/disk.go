// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// Disk is the filesystem-backed Cache. Every entry is a regular file named by
// its own content digest, directly under the cache root.
type Disk struct {
	root string
}

// NewDisk creates (if needed) the cache directory and returns a Disk cache
// rooted at it.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Disk{root: root}, nil
}

// Root returns the cache directory.
func (d *Disk) Root() string {
	return d.root
}

// Path returns the on-disk location for digest.
func (d *Disk) Path(digest string) string {
	return filepath.Join(d.root, digest)
}

// Put stores data under its content digest. The write is skipped when a valid
// entry already exists; a corrupt entry is removed and rewritten.
func (d *Disk) Put(data []byte) (string, string, error) {
	digest := Digest(data)
	path := d.Path(digest)

	if d.Verify(digest) {
		return digest, path, nil
	}

	// Either absent or corrupt; remove stale bytes before rewriting.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", "", fmt.Errorf("failed to remove stale cache entry %s: %w", digest, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write cache entry %s: %w", digest, err)
	}

	return digest, path, nil
}

// Get returns the stored bytes for digest, re-verifying them on the way out.
func (d *Disk) Get(digest string) ([]byte, bool, error) {
	data, err := os.ReadFile(d.Path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", digest, err)
	}
	if Digest(data) != digest {
		return nil, false, nil
	}
	return data, true, nil
}

// Verify reports whether the entry for digest exists and still hashes to it.
func (d *Disk) Verify(digest string) bool {
	data, err := os.ReadFile(d.Path(digest))
	if err != nil {
		return false
	}
	return Digest(data) == digest
}
