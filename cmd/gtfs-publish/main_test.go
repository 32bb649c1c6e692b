package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/transitgeo/gtfspublish/constants"
	"github.com/transitgeo/gtfspublish/internal/testutil"
)

func TestExtractBundle(t *testing.T) {
	archive := testutil.WriteZip(t, map[constants.StaticFile]string{
		constants.StopsFile:  "stop_id,stop_name\ns1,Alpha\n",
		constants.RoutesFile: "route_id\nr1\n",
	})
	dir, files, err := extractBundle(archive)
	if err != nil {
		t.Fatalf("extractBundle() err = %s; want nil", err)
	}
	defer os.RemoveAll(dir)

	if len(files) != 2 {
		t.Fatalf("got %d files; want 2", len(files))
	}
	byName := map[constants.StaticFile]string{}
	for _, f := range files {
		byName[f.Name] = f.Path
	}
	path, ok := byName[constants.StopsFile]
	if !ok {
		t.Fatalf("stops.txt was not extracted; got %v", byName)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("stops.txt extracted to %s; want it inside %s", path, dir)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read the extracted member: %s", err)
	}
	if got := string(content); got != "stop_id,stop_name\ns1,Alpha\n" {
		t.Errorf("extracted content = %q; want the original member", got)
	}
}

func TestExtractBundleMissingArchive(t *testing.T) {
	if _, _, err := extractBundle(filepath.Join(t.TempDir(), "absent.zip")); err != nil {
		return
	}
	t.Error("extractBundle() err = nil; want an error for a missing archive")
}
