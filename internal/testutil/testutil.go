// Package testutil builds synthetic GTFS bundles for tests.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/transitgeo/gtfspublish/constants"
)

// WriteBundle writes the given members into a temp directory and returns
// each member's path. The directory is removed when the test finishes.
func WriteBundle(t *testing.T, members map[constants.StaticFile]string) map[constants.StaticFile]string {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[constants.StaticFile]string, len(members))
	for name, content := range members {
		path := filepath.Join(dir, string(name))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %s", name, err)
		}
		paths[name] = path
	}
	return paths
}

// WriteZip writes the given members into a zip archive and returns its path.
// The archive is removed when the test finishes.
func WriteZip(t *testing.T, members map[constants.StaticFile]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %s", path, err)
	}
	w := zip.NewWriter(f)
	for name, content := range members {
		member, err := w.Create(string(name))
		if err != nil {
			t.Fatalf("failed to add %s to the archive: %s", name, err)
		}
		if _, err := member.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %s", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finish the archive: %s", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close %s: %s", path, err)
	}
	return path
}
