// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"modkit/internal/testutil"
)

func TestZipOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.smod")
	testutil.WriteModArchive(t, path, map[string][]byte{
		"data.json":   []byte(`{"modid": "m", "version": "1.0.0"}`),
		"payload.pak": []byte("pak bytes"),
	})

	a, err := OpenZip(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer testutil.DeferClose(t, a)()

	data, err := a.Open("payload.pak")
	if err != nil {
		t.Fatalf("open entry failed: %v", err)
	}
	if !bytes.Equal(data, []byte("pak bytes")) {
		t.Errorf("got %q", data)
	}

	_, err = a.Open("absent.pak")
	if !errors.Is(err, ErrObjectMissing) {
		t.Errorf("expected ErrObjectMissing, got %v", err)
	}
}

func TestOpenZipNotAnArchive(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.zip")
	testutil.MustWriteFile(t, path, []byte("this is not a zip"), 0o644)

	if _, err := OpenZip(path); err == nil {
		t.Fatal("expected error for a non-zip file")
	}
}

func TestReadManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.zip")
	testutil.WriteModArchive(t, path, map[string][]byte{
		"data.json": testutil.ManifestJSON("readme", "2.1.0", nil),
	})

	desc, err := ManifestReader{}.ReadManifest(path)
	if err != nil {
		t.Fatalf("read manifest failed: %v", err)
	}
	if desc.ModID != "readme" || desc.Version.String() != "2.1.0" {
		t.Errorf("unexpected descriptor: %+v", desc)
	}
}

func TestReadManifestMissingEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.zip")
	testutil.WriteModArchive(t, path, map[string][]byte{
		"readme.txt": []byte("no manifest here"),
	})

	_, err := ManifestReader{}.ReadManifest(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "data.json entry is missing") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadManifestInvalidDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.zip")
	testutil.WriteModArchive(t, path, map[string][]byte{
		"data.json": []byte(`{"version": "1.0.0"}`),
	})

	if _, err := (ManifestReader{}).ReadManifest(path); err == nil {
		t.Fatal("expected error for a manifest without a modid")
	}
}
