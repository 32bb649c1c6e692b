// Package gtfspublish converts a GTFS static bundle into hosted feature
// layers on a remote platform.
package gtfspublish

import (
	"fmt"
	"log"
	"strconv"

	"github.com/transitgeo/gtfspublish/constants"
	"github.com/transitgeo/gtfspublish/csv"
	"github.com/transitgeo/gtfspublish/warnings"
)

// File points at one extracted member of a GTFS bundle. The extracted copy
// is owned by the surrounding run; the parser only reads it.
type File struct {
	Name constants.StaticFile
	Path string
}

// Feed contains the parsed records of a single GTFS bundle.
type Feed struct {
	Stops       []Stop
	Routes      []Route
	Trips       []Trip
	ShapePoints []ShapePoint
	Warnings    []warnings.StaticWarning
}

// Stop corresponds to a single row in the stops.txt file.
type Stop struct {
	Id   string
	Name string
	Lat  float64
	Lon  float64
}

// Route corresponds to a single row in the routes.txt file. Color is the raw
// hex string; decoding happens in the styling engine.
type Route struct {
	Id        string
	ShortName string
	LongName  string
	Color     string
}

// Trip corresponds to a single row in the trips.txt file.
type Trip struct {
	Id      string
	RouteId string
	ShapeId string
}

// ShapePoint corresponds to a single row in the shapes.txt file.
type ShapePoint struct {
	ShapeId      string
	Lat          float64
	Lon          float64
	Sequence     int
	DistTraveled float64
}

// ValidationError reports required bundle members that are missing.
type ValidationError struct {
	Missing []constants.StaticFile
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("bundle is missing required files %v", e.Missing)
}

// ValidateFiles checks that every required bundle member is present. It must
// pass before any publishing work starts.
func ValidateFiles(files []File) error {
	var missing []constants.StaticFile
	for _, name := range constants.RequiredFiles {
		if _, ok := findFile(files, name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func findFile(files []File, name constants.StaticFile) (string, bool) {
	for _, f := range files {
		if f.Name == name {
			return f.Path, true
		}
	}
	return "", false
}

// ParseFiles parses the bundle members the pipeline consumes. Members it
// does not recognize are ignored; missing members yield empty record slices,
// so callers gate on ValidateFiles first.
func ParseFiles(files []File) (*Feed, error) {
	feed := &Feed{}
	for _, table := range []struct {
		name  constants.StaticFile
		parse func(f *csv.File)
	}{
		{
			constants.RoutesFile,
			func(f *csv.File) { feed.Routes = parseRoutes(f, feed) },
		},
		{
			constants.TripsFile,
			func(f *csv.File) { feed.Trips = parseTrips(f, feed) },
		},
		{
			constants.StopsFile,
			func(f *csv.File) { feed.Stops = parseStops(f, feed) },
		},
		{
			constants.ShapesFile,
			func(f *csv.File) { feed.ShapePoints = parseShapePoints(f, feed) },
		},
	} {
		path, ok := findFile(files, table.name)
		if !ok {
			continue
		}
		f, err := csv.Open(table.name, path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", table.name, err)
		}
		table.parse(f)
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", table.name, err)
		}
	}
	return feed, nil
}

func (feed *Feed) warn(w warnings.StaticWarning) {
	log.Print(w.Error())
	feed.Warnings = append(feed.Warnings, w)
}

// tableUsable records a warning and reports false when required columns are
// absent from the file's header.
func tableUsable(f *csv.File, feed *Feed) bool {
	if missing := f.MissingRequiredColumns(); len(missing) > 0 {
		feed.warn(warnings.TableMissingColumns{SourceFile: f.Name(), MissingKeys: missing})
		return false
	}
	return true
}

func parseStops(f *csv.File, feed *Feed) []Stop {
	idColumn := f.RequiredColumn("stop_id")
	nameColumn := f.RequiredColumn("stop_name")
	latColumn := f.OptionalColumn("stop_lat")
	lonColumn := f.OptionalColumn("stop_lon")
	if !tableUsable(f, feed) {
		return nil
	}
	var stops []Stop
	for f.NextRow() {
		stop := Stop{
			Id:   idColumn.Read(),
			Name: nameColumn.Read(),
			Lat:  parseFloatOrZero(latColumn.Read()),
			Lon:  parseFloatOrZero(lonColumn.Read()),
		}
		if missing := f.MissingRowKeys(); len(missing) > 0 {
			feed.warn(warnings.RowMissingColumns{SourceFile: f.Name(), RowNumber: f.RowNumber(), MissingKeys: missing})
			continue
		}
		stops = append(stops, stop)
	}
	return stops
}

func parseRoutes(f *csv.File, feed *Feed) []Route {
	idColumn := f.RequiredColumn("route_id")
	shortNameColumn := f.OptionalColumn("route_short_name")
	longNameColumn := f.OptionalColumn("route_long_name")
	colorColumn := f.OptionalColumn("route_color")
	if !tableUsable(f, feed) {
		return nil
	}
	var routes []Route
	for f.NextRow() {
		route := Route{
			Id:        idColumn.Read(),
			ShortName: shortNameColumn.Read(),
			LongName:  longNameColumn.Read(),
			Color:     colorColumn.Read(),
		}
		if missing := f.MissingRowKeys(); len(missing) > 0 {
			feed.warn(warnings.RowMissingColumns{SourceFile: f.Name(), RowNumber: f.RowNumber(), MissingKeys: missing})
			continue
		}
		routes = append(routes, route)
	}
	return routes
}

func parseTrips(f *csv.File, feed *Feed) []Trip {
	idColumn := f.RequiredColumn("trip_id")
	routeIdColumn := f.RequiredColumn("route_id")
	shapeIdColumn := f.OptionalColumn("shape_id")
	if !tableUsable(f, feed) {
		return nil
	}
	var trips []Trip
	for f.NextRow() {
		trip := Trip{
			Id:      idColumn.Read(),
			RouteId: routeIdColumn.Read(),
			ShapeId: shapeIdColumn.Read(),
		}
		if missing := f.MissingRowKeys(); len(missing) > 0 {
			feed.warn(warnings.RowMissingColumns{SourceFile: f.Name(), RowNumber: f.RowNumber(), MissingKeys: missing})
			continue
		}
		trips = append(trips, trip)
	}
	return trips
}

func parseShapePoints(f *csv.File, feed *Feed) []ShapePoint {
	idColumn := f.RequiredColumn("shape_id")
	latColumn := f.OptionalColumn("shape_pt_lat")
	lonColumn := f.OptionalColumn("shape_pt_lon")
	sequenceColumn := f.OptionalColumn("shape_pt_sequence")
	distColumn := f.OptionalColumn("shape_dist_traveled")
	if !tableUsable(f, feed) {
		return nil
	}
	var points []ShapePoint
	for f.NextRow() {
		point := ShapePoint{
			ShapeId:      idColumn.Read(),
			Lat:          parseFloatOrZero(latColumn.Read()),
			Lon:          parseFloatOrZero(lonColumn.Read()),
			Sequence:     parseIntOrZero(sequenceColumn.Read()),
			DistTraveled: parseFloatOrZero(distColumn.Read()),
		}
		if missing := f.MissingRowKeys(); len(missing) > 0 {
			feed.warn(warnings.RowMissingColumns{SourceFile: f.Name(), RowNumber: f.RowNumber(), MissingKeys: missing})
			continue
		}
		points = append(points, point)
	}
	return points
}

// Malformed numeric fields degrade to zero instead of failing the parse;
// downstream consumers always receive a usable number.
func parseFloatOrZero(raw string) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseIntOrZero(raw string) int {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return i
}
