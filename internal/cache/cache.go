// SPDX-License-Identifier: MPL-2.0

// Package cache implements the content-addressed store for payloads extracted
// from mod archives. Entries are keyed by the hex-encoded SHA-256 digest of
// their bytes, which deduplicates identical payloads regardless of which
// archive they came from. An entry whose stored bytes no longer hash to its
// key is treated as absent and rebuilt on the next Put.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache is the content-addressed store consumed by the archive extractor.
// Implementations must guarantee that Put is idempotent for identical bytes
// and that Get never returns bytes that do not hash to the requested digest.
type Cache interface {
	// Put stores data and returns its digest and the materialized location.
	// If a valid entry for the digest already exists, no write is performed.
	Put(data []byte) (digest string, path string, err error)

	// Get returns the stored bytes for digest. The second return value is
	// false when the entry is absent or fails verification.
	Get(digest string) ([]byte, bool, error)

	// Verify reports whether the entry for digest exists and its bytes hash
	// to digest.
	Verify(digest string) bool

	// Path returns the location an entry for digest would be materialized at.
	Path(digest string) string
}

// Digest returns the hex-encoded SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
