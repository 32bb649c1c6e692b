package gtfspublish

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/transitgeo/gtfspublish/arcgis"
)

// DefaultChunkSize is the most records submitted to the remote service in a
// single call.
const DefaultChunkSize = 1000

// Connection is the slice of the remote platform the pipeline drives.
// *arcgis.Client implements it. Implementations must be safe for concurrent
// use; the pipeline shares one connection across all tasks.
type Connection interface {
	CreateService(ctx context.Context, def arcgis.ServiceDefinition) (*arcgis.ServiceInfo, error)
	AddToDefinition(ctx context.Context, svc *arcgis.ServiceInfo, layers []arcgis.LayerDefinition) error
	Analyze(ctx context.Context, text string) (arcgis.PublishParameters, error)
	Generate(ctx context.Context, text string, params arcgis.PublishParameters) (*arcgis.FeatureCollection, error)
	AddFeatures(ctx context.Context, svc *arcgis.ServiceInfo, layerID int, features []arcgis.Feature) error
	Share(ctx context.Context, itemID, groupID string) error
}

// XY is a projected coordinate pair in the target spatial reference.
type XY struct {
	X float64
	Y float64
}

// Translator projects flat geographic coordinates into the target spatial
// reference by driving the remote generation service.
type Translator struct {
	Conn Connection
	// ChunkSize caps the records per generation call. Zero means
	// DefaultChunkSize.
	ChunkSize int
}

func (t *Translator) chunkSize() int {
	if t.ChunkSize > 0 {
		return t.ChunkSize
	}
	return DefaultChunkSize
}

// Translate projects coords, preserving input order: output i corresponds to
// input i regardless of chunk boundaries. Analysis runs exactly once over
// the full input to obtain stable publish parameters; generation runs once
// per chunk, chunks concurrently. Zero input coordinates means zero calls.
func (t *Translator) Translate(ctx context.Context, coords []LatLon) ([]XY, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	shared, err := t.Conn.Analyze(ctx, coordinateCSV(coords))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze coordinates: %w", err)
	}
	chunks := chunk(coords, t.chunkSize())
	out := make([][]XY, len(chunks))
	// The plain errgroup zero value: a failed chunk does not cancel its
	// siblings, they run to completion.
	var group errgroup.Group
	for i, c := range chunks {
		i, c := i, c
		group.Go(func() error {
			xys, err := t.generateChunk(ctx, c, shared)
			if err != nil {
				return err
			}
			out[i] = xys
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	flat := make([]XY, 0, len(coords))
	for _, xys := range out {
		flat = append(flat, xys...)
	}
	return flat, nil
}

func (t *Translator) generateChunk(ctx context.Context, coords []LatLon, shared arcgis.PublishParameters) ([]XY, error) {
	params := shared.Merge(arcgis.PublishParameters{
		"locationType":       "coordinates",
		"latitudeFieldName":  "lat",
		"longitudeFieldName": "lon",
	})
	collection, err := t.Conn.Generate(ctx, coordinateCSV(coords), params)
	if err != nil {
		return nil, err
	}
	features := collection.Features()
	// The service must return one output per input in request order; a
	// count mismatch is a data-correctness bug, not something to paper over.
	if len(features) != len(coords) {
		return nil, fmt.Errorf("generation returned %d features for %d records", len(features), len(coords))
	}
	xys := make([]XY, len(features))
	for i, feature := range features {
		if feature.Geometry == nil || feature.Geometry.X == nil || feature.Geometry.Y == nil {
			return nil, fmt.Errorf("generation returned feature %d without point geometry", i)
		}
		xys[i] = XY{X: *feature.Geometry.X, Y: *feature.Geometry.Y}
	}
	return xys, nil
}

// coordinateCSV renders coordinates as the tabular text the analyze and
// generate endpoints consume.
func coordinateCSV(coords []LatLon) string {
	var b strings.Builder
	b.WriteString("lat,lon\n")
	for _, c := range coords {
		fmt.Fprintf(&b, "%g,%g\n", c.Lat, c.Lon)
	}
	return b.String()
}

// chunk splits s into pieces of at most size elements, preserving order.
func chunk[T any](s []T, size int) [][]T {
	if len(s) == 0 {
		return nil
	}
	var out [][]T
	for len(s) > size {
		out = append(out, s[:size:size])
		s = s[size:]
	}
	return append(out, s)
}
