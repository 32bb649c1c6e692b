package csv

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/transitgeo/gtfspublish/constants"
)

func open(t *testing.T, content string) *File {
	t.Helper()
	f, err := New(constants.StopsFile, io.NopCloser(strings.NewReader(content)))
	if err != nil {
		t.Fatalf("New() err = %s; want nil", err)
	}
	t.Cleanup(func() {
		if err := f.Close(); err != nil {
			t.Errorf("Close() err = %s; want nil", err)
		}
	})
	return f
}

func TestReadColumns(t *testing.T) {
	f := open(t, "stop_id,stop_name,stop_lat\ns1,Alpha,40.7\ns2,Beta,40.8\n")
	id := f.RequiredColumn("stop_id")
	name := f.OptionalColumn("stop_name")
	var got [][2]string
	for f.NextRow() {
		got = append(got, [2]string{id.Read(), name.Read()})
	}
	expected := [][2]string{{"s1", "Alpha"}, {"s2", "Beta"}}
	if diff := cmp.Diff(got, expected); diff != "" {
		t.Errorf("unexpected rows (-got, +want):\n%s", diff)
	}
}

func TestByteOrderMarkIsStripped(t *testing.T) {
	f := open(t, "\ufeffstop_id,stop_name\ns1,Alpha\n")
	id := f.RequiredColumn("stop_id")
	if missing := f.MissingRequiredColumns(); missing != nil {
		t.Fatalf("MissingRequiredColumns() = %v; want nil", missing)
	}
	if !f.NextRow() {
		t.Fatal("NextRow() = false; want a data row")
	}
	if got := id.Read(); got != "s1" {
		t.Errorf("stop_id = %q; want s1", got)
	}
}

func TestMissingRequiredColumn(t *testing.T) {
	f := open(t, "stop_name\nAlpha\n")
	id := f.RequiredColumn("stop_id")
	if diff := cmp.Diff(f.MissingRequiredColumns(), []string{"stop_id"}); diff != "" {
		t.Errorf("unexpected missing columns (-got, +want):\n%s", diff)
	}
	if !f.NextRow() {
		t.Fatal("NextRow() = false; want a data row")
	}
	if got := id.Read(); got != "" {
		t.Errorf("stop_id = %q; want the empty string", got)
	}
	if diff := cmp.Diff(f.MissingRowKeys(), []string{"stop_id"}); diff != "" {
		t.Errorf("unexpected missing row keys (-got, +want):\n%s", diff)
	}
}

func TestEmptyRequiredCellReported(t *testing.T) {
	f := open(t, "stop_id,stop_name\n,Alpha\ns2,Beta\n")
	id := f.RequiredColumn("stop_id")

	if !f.NextRow() {
		t.Fatal("NextRow() = false; want the first data row")
	}
	id.Read()
	if diff := cmp.Diff(f.MissingRowKeys(), []string{"stop_id"}); diff != "" {
		t.Errorf("unexpected missing row keys (-got, +want):\n%s", diff)
	}

	// The bookkeeping resets per row.
	if !f.NextRow() {
		t.Fatal("NextRow() = false; want the second data row")
	}
	if got := id.Read(); got != "s2" {
		t.Errorf("stop_id = %q; want s2", got)
	}
	if missing := f.MissingRowKeys(); missing != nil {
		t.Errorf("MissingRowKeys() = %v; want nil", missing)
	}
}

func TestOptionalColumnAbsent(t *testing.T) {
	f := open(t, "stop_id\ns1\n")
	lat := f.OptionalColumn("stop_lat")
	if !f.NextRow() {
		t.Fatal("NextRow() = false; want a data row")
	}
	if got := lat.Read(); got != "" {
		t.Errorf("stop_lat = %q; want the empty string", got)
	}
}

func TestEmptyFile(t *testing.T) {
	_, err := New(constants.StopsFile, io.NopCloser(strings.NewReader("")))
	if err == nil {
		t.Error("New() err = nil; want an error for a file without a header")
	}
}

func TestRowNumber(t *testing.T) {
	f := open(t, "stop_id\ns1\ns2\n")
	var numbers []int
	for f.NextRow() {
		numbers = append(numbers, f.RowNumber())
	}
	if diff := cmp.Diff(numbers, []int{1, 2}); diff != "" {
		t.Errorf("unexpected row numbers (-got, +want):\n%s", diff)
	}
}
