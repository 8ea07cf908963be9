// SPDX-License-Identifier: MPL-2.0

// Package archive provides read access to packaged mod archives and the
// extraction of their declared payload objects into the content cache.
// Only "list file by name, read its bytes" is assumed of the container
// format; zip (and its .smod alias) is the production implementation.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	"modkit/internal/manifest"
)

// ErrObjectMissing indicates a declared object absent from its archive.
// Callers can check for it with errors.Is.
var ErrObjectMissing = errors.New("object missing from archive")

// Archive is the minimal read surface the extractor needs.
type Archive interface {
	// Open returns the bytes of the named file, or an error wrapping
	// ErrObjectMissing when no such file exists.
	Open(name string) ([]byte, error)
	// Close releases the underlying container.
	Close() error
}

// Zip is an Archive backed by a zip container.
type Zip struct {
	rc *zip.ReadCloser
}

// OpenZip opens the archive at path.
func OpenZip(path string) (*Zip, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	return &Zip{rc: rc}, nil
}

// Open returns the bytes of the named file inside the archive.
func (z *Zip) Open(name string) ([]byte, error) {
	for _, f := range z.rc.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrObjectMissing)
}

// Close releases the archive.
func (z *Zip) Close() error {
	return z.rc.Close()
}

// ManifestReader loads descriptors out of zip archives. It implements the
// registry's ManifestLoader.
type ManifestReader struct{}

// ReadManifest opens the archive at path and parses its data.json.
func (ManifestReader) ReadManifest(path string) (*manifest.Descriptor, error) {
	a, err := OpenZip(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	data, err := a.Open(manifest.FileName)
	if err != nil {
		if errors.Is(err, ErrObjectMissing) {
			return nil, fmt.Errorf("%s entry is missing in archive", manifest.FileName)
		}
		return nil, err
	}

	return manifest.Parse(data, manifest.FileName)
}
