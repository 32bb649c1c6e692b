package warnings

import (
	"fmt"

	"github.com/transitgeo/gtfspublish/constants"
)

// StaticWarning is a non-fatal problem found while parsing a GTFS bundle.
type StaticWarning interface {
	File() constants.StaticFile
	Error() string
}

// RowMissingColumns is emitted when a row lacks values for required columns
// and is skipped.
type RowMissingColumns struct {
	SourceFile  constants.StaticFile
	RowNumber   int
	MissingKeys []string
}

func (w RowMissingColumns) File() constants.StaticFile {
	return w.SourceFile
}

func (w RowMissingColumns) Error() string {
	return fmt.Sprintf("skipping row %d of %s because of missing columns %s", w.RowNumber, w.SourceFile, w.MissingKeys)
}

// TableMissingColumns is emitted when a whole file lacks required columns and
// none of its rows can be used.
type TableMissingColumns struct {
	SourceFile  constants.StaticFile
	MissingKeys []string
}

func (w TableMissingColumns) File() constants.StaticFile {
	return w.SourceFile
}

func (w TableMissingColumns) Error() string {
	return fmt.Sprintf("skipping %s because of missing columns %s", w.SourceFile, w.MissingKeys)
}
