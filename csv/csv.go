// Package csv is a wrapper around the stdlib csv library that provides a
// column-oriented API for the GTFS bundle parser.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/transitgeo/gtfspublish/constants"
)

// File is one bundle member opened for column-oriented reading.
type File struct {
	name                   constants.StaticFile
	csvReader              *csv.Reader
	headerMap              map[string]int
	rowNumber              int
	missingRequiredColumns []string
	currentRow             *row
	ioErr                  error
	closer                 func() error
}

type row struct {
	cells       []string
	missingKeys []string
}

// Open reads the header row of an extracted bundle member on disk.
func Open(name constants.StaticFile, path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return New(name, f)
}

// New reads the header row of a bundle member and prepares it for iteration.
func New(name constants.StaticFile, reader io.ReadCloser) (*File, error) {
	csvReader := BOMAwareCSVReader(reader)
	header, err := csvReader.Read()
	if err == io.EOF {
		reader.Close()
		return nil, fmt.Errorf("%s contains no rows", name)
	} else if err != nil {
		reader.Close()
		return nil, err
	}
	// The header is read before enabling record reuse so it stays valid for
	// the lifetime of the file.
	csvReader.ReuseRecord = true
	m := make(map[string]int, len(header))
	for i, column := range header {
		m[column] = i
	}
	return &File{
		name:      name,
		headerMap: m,
		csvReader: csvReader,
		closer:    reader.Close,
	}, nil
}

func (f *File) Name() constants.StaticFile {
	return f.name
}

// RequiredColumn declares a column every row must carry a value for. Rows
// with an empty or absent cell are reported through MissingRowKeys.
type RequiredColumn struct {
	i int
	s string
	f *File
}

func (f *File) RequiredColumn(s string) RequiredColumn {
	i, ok := f.headerMap[s]
	if !ok {
		f.missingRequiredColumns = append(f.missingRequiredColumns, s)
		i = -1
	}
	return RequiredColumn{i, s, f}
}

// MissingRequiredColumns returns the required columns absent from the header.
func (f *File) MissingRequiredColumns() []string {
	if len(f.missingRequiredColumns) == 0 {
		return nil
	}
	return f.missingRequiredColumns
}

func (c RequiredColumn) Read() string {
	r := c.f.currentRow
	if c.i < 0 || c.i >= len(r.cells) || r.cells[c.i] == "" {
		r.missingKeys = append(r.missingKeys, c.s)
		return ""
	}
	return r.cells[c.i]
}

// OptionalColumn is a column that may be absent; reading it then yields the
// empty string.
type OptionalColumn struct {
	i int
	f *File
}

func (f *File) OptionalColumn(s string) OptionalColumn {
	i, ok := f.headerMap[s]
	if !ok {
		i = -1
	}
	return OptionalColumn{i: i, f: f}
}

func (c OptionalColumn) Read() string {
	r := c.f.currentRow
	if c.i < 0 || c.i >= len(r.cells) {
		return ""
	}
	return r.cells[c.i]
}

// NextRow advances to the next data row. It returns false at the end of the
// file or on a read error, which Close reports.
func (f *File) NextRow() bool {
	cells, err := f.csvReader.Read()
	if err == io.EOF {
		f.currentRow = nil
		return false
	}
	if err != nil {
		f.currentRow = nil
		f.ioErr = err
		return false
	}
	if f.currentRow == nil {
		f.currentRow = &row{}
	}
	f.rowNumber++
	f.currentRow.cells = cells
	f.currentRow.missingKeys = nil
	return true
}

// RowNumber returns the 1-based number of the current data row.
func (f *File) RowNumber() int {
	return f.rowNumber
}

// MissingRowKeys returns the required columns the current row had no value
// for.
func (f *File) MissingRowKeys() []string {
	return f.currentRow.missingKeys
}

func (f *File) Close() error {
	closeErr := f.closer()
	if f.ioErr != nil {
		return f.ioErr
	}
	return closeErr
}

// From: https://stackoverflow.com/a/76023436
//
// BOMAwareCSVReader will detect a UTF BOM (Byte Order Mark) at the
// start of the data and transform to UTF8 accordingly.
// If there is no BOM, it will read the data without any transformation.
func BOMAwareCSVReader(reader io.Reader) *csv.Reader {
	var transformer = unicode.BOMOverride(encoding.Nop.NewDecoder())
	return csv.NewReader(transform.NewReader(reader, transformer))
}
