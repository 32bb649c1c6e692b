package gtfspublish

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/transitgeo/gtfspublish/constants"
	"github.com/transitgeo/gtfspublish/internal/testutil"
)

func TestParseFiles(t *testing.T) {
	members := map[constants.StaticFile]string{
		constants.StopsFile: "stop_id,stop_name,stop_lat,stop_lon\n" +
			"s1,Alpha,40.7,-74.0\n" +
			"s2,Beta,40.8,-73.9\n",
		constants.RoutesFile: "route_id,route_short_name,route_long_name,route_color\n" +
			"r1,1,First Avenue,FF0000\n" +
			"r2,2,Second Avenue,\n",
		constants.TripsFile: "trip_id,route_id,shape_id\n" +
			"t1,r1,sh1\n" +
			"t2,r2,\n",
		constants.ShapesFile: "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence,shape_dist_traveled\n" +
			"sh1,40.7,-74.0,2,1.5\n" +
			"sh1,40.8,-73.9,1,0\n",
	}
	feed, err := ParseFiles(filesFromBundle(t, members))
	if err != nil {
		t.Fatalf("ParseFiles() err = %s; want nil", err)
	}
	expected := &Feed{
		Stops: []Stop{
			{Id: "s1", Name: "Alpha", Lat: 40.7, Lon: -74.0},
			{Id: "s2", Name: "Beta", Lat: 40.8, Lon: -73.9},
		},
		Routes: []Route{
			{Id: "r1", ShortName: "1", LongName: "First Avenue", Color: "FF0000"},
			{Id: "r2", ShortName: "2", LongName: "Second Avenue", Color: ""},
		},
		Trips: []Trip{
			{Id: "t1", RouteId: "r1", ShapeId: "sh1"},
			{Id: "t2", RouteId: "r2", ShapeId: ""},
		},
		ShapePoints: []ShapePoint{
			{ShapeId: "sh1", Lat: 40.7, Lon: -74.0, Sequence: 2, DistTraveled: 1.5},
			{ShapeId: "sh1", Lat: 40.8, Lon: -73.9, Sequence: 1, DistTraveled: 0},
		},
	}
	if diff := cmp.Diff(feed, expected); diff != "" {
		t.Errorf("unexpected feed (-got, +want):\n%s", diff)
	}
}

func TestParseFilesMissingOptionalShapes(t *testing.T) {
	members := map[constants.StaticFile]string{
		constants.StopsFile:  "stop_id,stop_name\ns1,Alpha\n",
		constants.RoutesFile: "route_id\nr1\n",
		constants.TripsFile:  "trip_id,route_id\nt1,r1\n",
	}
	feed, err := ParseFiles(filesFromBundle(t, members))
	if err != nil {
		t.Fatalf("ParseFiles() err = %s; want nil", err)
	}
	if len(feed.ShapePoints) != 0 {
		t.Errorf("got %d shape points; want none", len(feed.ShapePoints))
	}
	if len(feed.Warnings) != 0 {
		t.Errorf("got warnings %v; want none", feed.Warnings)
	}
}

func TestParseFilesMalformedNumbersDegradeToZero(t *testing.T) {
	members := map[constants.StaticFile]string{
		constants.StopsFile:  "stop_id,stop_name,stop_lat,stop_lon\ns1,Alpha,not-a-number,-74.0\n",
		constants.RoutesFile: "route_id\nr1\n",
		constants.TripsFile:  "trip_id,route_id\nt1,r1\n",
		constants.ShapesFile: "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\nsh1,40.7,-74.0,oops\n",
	}
	feed, err := ParseFiles(filesFromBundle(t, members))
	if err != nil {
		t.Fatalf("ParseFiles() err = %s; want nil", err)
	}
	if got := feed.Stops[0].Lat; got != 0 {
		t.Errorf("stop lat = %v; want 0 for a malformed value", got)
	}
	if got := feed.Stops[0].Lon; got != -74.0 {
		t.Errorf("stop lon = %v; want -74.0", got)
	}
	if got := feed.ShapePoints[0].Sequence; got != 0 {
		t.Errorf("shape point sequence = %v; want 0 for a malformed value", got)
	}
}

func TestParseFilesSkipsRowsMissingRequiredValues(t *testing.T) {
	members := map[constants.StaticFile]string{
		constants.StopsFile: "stop_id,stop_name\n" +
			"s1,Alpha\n" +
			",Nameless\n",
		constants.RoutesFile: "route_id\nr1\n",
		constants.TripsFile:  "trip_id,route_id\nt1,r1\n",
	}
	feed, err := ParseFiles(filesFromBundle(t, members))
	if err != nil {
		t.Fatalf("ParseFiles() err = %s; want nil", err)
	}
	if len(feed.Stops) != 1 || feed.Stops[0].Id != "s1" {
		t.Errorf("got stops %v; want only s1", feed.Stops)
	}
	if len(feed.Warnings) != 1 {
		t.Fatalf("got %d warnings; want 1", len(feed.Warnings))
	}
	if got := feed.Warnings[0].File(); got != constants.StopsFile {
		t.Errorf("warning file = %s; want %s", got, constants.StopsFile)
	}
}

func TestParseFilesSkipsTableMissingRequiredColumns(t *testing.T) {
	members := map[constants.StaticFile]string{
		constants.StopsFile:  "stop_id,stop_name\ns1,Alpha\n",
		constants.RoutesFile: "route_long_name\nFirst Avenue\n",
		constants.TripsFile:  "trip_id,route_id\nt1,r1\n",
	}
	feed, err := ParseFiles(filesFromBundle(t, members))
	if err != nil {
		t.Fatalf("ParseFiles() err = %s; want nil", err)
	}
	if len(feed.Routes) != 0 {
		t.Errorf("got routes %v; want none", feed.Routes)
	}
	if len(feed.Warnings) != 1 {
		t.Fatalf("got %d warnings; want 1", len(feed.Warnings))
	}
	if got := feed.Warnings[0].File(); got != constants.RoutesFile {
		t.Errorf("warning file = %s; want %s", got, constants.RoutesFile)
	}
}

func TestValidateFiles(t *testing.T) {
	members := map[constants.StaticFile]string{
		constants.StopsFile:  "stop_id,stop_name\n",
		constants.RoutesFile: "route_id\n",
	}
	err := ValidateFiles(filesFromBundle(t, members))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("ValidateFiles() err = %v; want a ValidationError", err)
	}
	expected := []constants.StaticFile{constants.TripsFile}
	if diff := cmp.Diff(validationErr.Missing, expected); diff != "" {
		t.Errorf("unexpected missing files (-got, +want):\n%s", diff)
	}
}

func TestValidateFilesComplete(t *testing.T) {
	members := map[constants.StaticFile]string{
		constants.StopsFile:  "stop_id,stop_name\n",
		constants.RoutesFile: "route_id\n",
		constants.TripsFile:  "trip_id,route_id\n",
	}
	if err := ValidateFiles(filesFromBundle(t, members)); err != nil {
		t.Errorf("ValidateFiles() err = %s; want nil", err)
	}
}

func filesFromBundle(t *testing.T, members map[constants.StaticFile]string) []File {
	t.Helper()
	var files []File
	for name, path := range testutil.WriteBundle(t, members) {
		files = append(files, File{Name: name, Path: path})
	}
	return files
}
