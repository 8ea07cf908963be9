// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDigestIsStableHex(t *testing.T) {
	t.Parallel()

	d1 := Digest([]byte("payload"))
	d2 := Digest([]byte("payload"))
	if d1 != d2 {
		t.Errorf("digest not deterministic: %s vs %s", d1, d2)
	}
	if len(d1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(d1))
	}
	if Digest([]byte("other")) == d1 {
		t.Error("different content must not share a digest")
	}
}

func TestDiskPutGet(t *testing.T) {
	t.Parallel()

	d, err := NewDisk(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	content := []byte("pak bytes")
	digest, path, err := d.Put(content)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if path != d.Path(digest) {
		t.Errorf("path = %q, want %q", path, d.Path(digest))
	}

	got, ok, err := d.Get(digest)
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("got %q, want %q", got, content)
	}
	if !d.Verify(digest) {
		t.Error("expected entry to verify")
	}
}

func TestDiskGetAbsent(t *testing.T) {
	t.Parallel()

	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	_, ok, err := d.Get(Digest([]byte("never stored")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected absent entry")
	}
}

func TestDiskPutIsIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d, err := NewDisk(root)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	content := []byte("shared payload")
	digest, path, err := d.Put(content)
	if err != nil {
		t.Fatalf("first put failed: %v", err)
	}

	info1, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}

	digest2, _, err := d.Put(content)
	if err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	if digest2 != digest {
		t.Errorf("digests differ: %s vs %s", digest, digest2)
	}

	info2, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !info2.ModTime().Equal(info1.ModTime()) {
		t.Error("second put of identical content must not rewrite the entry")
	}
}

func TestDiskCorruptionIsRebuilt(t *testing.T) {
	t.Parallel()

	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	content := []byte("good bytes")
	digest, path, err := d.Put(content)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	// Flip the stored bytes under the same name.
	if err := os.WriteFile(path, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("failed to corrupt entry: %v", err)
	}

	if d.Verify(digest) {
		t.Fatal("corrupted entry must not verify")
	}
	if _, ok, _ := d.Get(digest); ok {
		t.Fatal("corrupted entry must read as absent")
	}

	// Re-putting the original content heals the entry.
	if _, _, err := d.Put(content); err != nil {
		t.Fatalf("healing put failed: %v", err)
	}
	got, ok, err := d.Get(digest)
	if err != nil || !ok {
		t.Fatalf("get after heal failed: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("got %q after heal, want %q", got, content)
	}
}

func TestMemoryDeduplicates(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	content := []byte("same bytes from two archives")

	d1, _, err := m.Put(content)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	d2, _, err := m.Put(content)
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if d1 != d2 {
		t.Errorf("digests differ: %s vs %s", d1, d2)
	}
	if m.Writes() != 1 {
		t.Errorf("expected 1 physical write, got %d", m.Writes())
	}
}

func TestMemoryCorrupt(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	digest, _, err := m.Put([]byte("original"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	m.Corrupt(digest, []byte("mangled"))
	if m.Verify(digest) {
		t.Error("corrupted entry must not verify")
	}
	if _, ok, _ := m.Get(digest); ok {
		t.Error("corrupted entry must read as absent")
	}

	// Re-put rebuilds and counts as a new physical write.
	if _, _, err := m.Put([]byte("original")); err != nil {
		t.Fatalf("healing put failed: %v", err)
	}
	if m.Writes() != 2 {
		t.Errorf("expected 2 physical writes, got %d", m.Writes())
	}
}
