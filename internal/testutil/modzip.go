// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"
	"testing"
)

// WriteModArchive creates a zip archive at path with the given entries
// (name -> content). The test fails immediately on any error.
func WriteModArchive(t testing.TB, path string, entries map[string][]byte) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive %s: %v", path, err)
	}
	defer MustClose(t, f)

	w := zip.NewWriter(f)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s to archive: %v", name, err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("failed to write %s to archive: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finalize archive %s: %v", path, err)
	}
}

// ManifestJSON builds a minimal data.json document for modID and version.
// deps maps dependency mod ids to version constraints; objects are
// "type:path" pairs.
func ManifestJSON(modID, version string, deps map[string]string, objects ...string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "{\n  \"modid\": %q,\n  \"version\": %q", modID, version)

	if len(objects) > 0 {
		b.WriteString(",\n  \"objects\": [")
		for i, obj := range objects {
			objType, objPath, ok := strings.Cut(obj, ":")
			if !ok {
				panic(fmt.Sprintf("testutil: object %q is not type:path", obj))
			}
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "\n    { \"type\": %q, \"path\": %q }", objType, objPath)
		}
		b.WriteString("\n  ]")
	}

	if len(deps) > 0 {
		b.WriteString(",\n  \"dependencies\": {")
		first := true
		for id, constraint := range deps {
			if !first {
				b.WriteString(",")
			}
			first = false
			fmt.Fprintf(&b, "\n    %q: %q", id, constraint)
		}
		b.WriteString("\n  }")
	}

	b.WriteString("\n}\n")
	return []byte(b.String())
}
