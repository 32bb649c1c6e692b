package gtfspublish

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/transitgeo/gtfspublish/arcgis"
	"github.com/transitgeo/gtfspublish/taskgraph"
)

// Layer ids within the published feature service.
const (
	StopsLayerID  = 0
	ShapesLayerID = 1
)

const publishWorkers = 4

// ImportResult aggregates the terminal state of every publish step.
type ImportResult struct {
	// Succeeded holds the ids of successful steps in resolution order.
	Succeeded []string
	// Failures holds one entry per failed step in resolution order. Steps
	// skipped because a dependency failed are included.
	Failures []taskgraph.Failure
}

// Failed reports whether any step failed.
func (r *ImportResult) Failed() bool {
	return len(r.Failures) > 0
}

// Publish converts the feed into hosted feature layers on the platform and
// blocks until every publish step has resolved.
//
// The steps form a fixed graph: createService, then addLayers, then
// uploadStops and uploadShapes concurrently; shareService depends only on
// createService and runs as soon as the service exists. A failed step fails
// its dependents without running them but never aborts unrelated steps, and
// nothing already uploaded is rolled back. The returned error is non-nil iff
// the failure list is non-empty, and concatenates every failure reason.
func Publish(ctx context.Context, conn Connection, group string, feed *Feed, serviceName string) (*ImportResult, error) {
	lines := AssembleShapes(feed.ShapePoints)
	colors := ShapeColors(feed.Routes, feed.Trips)
	translator := &Translator{Conn: conn}

	// Written once by createService; dependents read it only after that
	// task has succeeded.
	var svc *arcgis.ServiceInfo

	g := taskgraph.New(publishWorkers)
	createService := g.Add("createService", func(ctx context.Context) error {
		info, err := conn.CreateService(ctx, serviceDefinition(serviceName))
		if err != nil {
			return err
		}
		svc = info
		return nil
	})
	addLayers := g.Add("addLayers", func(ctx context.Context) error {
		layers := []arcgis.LayerDefinition{stopsLayerDefinition()}
		if len(lines) > 0 {
			renderer := ShapeRenderer(colors, lines)
			layers = append(layers, shapesLayerDefinition(renderer))
		}
		return conn.AddToDefinition(ctx, svc, layers)
	}, createService)
	g.Add("uploadStops", func(ctx context.Context) error {
		return uploadStops(ctx, conn, translator, svc, feed.Stops)
	}, addLayers)
	if len(lines) > 0 {
		g.Add("uploadShapes", func(ctx context.Context) error {
			return uploadShapes(ctx, conn, translator, svc, lines)
		}, addLayers)
	}
	g.Add("shareService", func(ctx context.Context) error {
		return conn.Share(ctx, svc.ItemID, group)
	}, createService)

	run := g.Run(ctx)
	result := &ImportResult{Succeeded: run.Succeeded, Failures: run.Failures}
	if result.Failed() {
		reasons := make([]string, len(result.Failures))
		for i, failure := range result.Failures {
			reasons[i] = fmt.Sprintf("%s: %s", failure.TaskID, failure.Reason)
		}
		return result, fmt.Errorf("import failed: %s", strings.Join(reasons, "; "))
	}
	return result, nil
}

// uploadStops projects the stop coordinates and appends the resulting
// features to the stops layer, one concurrent append per chunk.
func uploadStops(ctx context.Context, conn Connection, translator *Translator, svc *arcgis.ServiceInfo, stops []Stop) error {
	if len(stops) == 0 {
		return nil
	}
	coords := make([]LatLon, len(stops))
	for i, stop := range stops {
		coords[i] = LatLon{Lat: stop.Lat, Lon: stop.Lon}
	}
	projected, err := translator.Translate(ctx, coords)
	if err != nil {
		return err
	}
	stopChunks := chunk(stops, translator.chunkSize())
	projectedChunks := chunk(projected, translator.chunkSize())
	var group errgroup.Group
	// Each chunk's start id is fixed before its goroutine is spawned so the
	// chunks' id ranges stay disjoint.
	next := 1
	for i := range stopChunks {
		i, start := i, next
		next += len(stopChunks[i])
		group.Go(func() error {
			features, err := StopFeatures(stopChunks[i], projectedChunks[i], start)
			if err != nil {
				return err
			}
			return conn.AddFeatures(ctx, svc, StopsLayerID, features)
		})
	}
	return group.Wait()
}

// uploadShapes projects every line's coordinates in one dataset (a single
// analysis, order preserved across chunks), rebuilds per-line paths, and
// appends the polyline features to the shapes layer chunk by chunk.
func uploadShapes(ctx context.Context, conn Connection, translator *Translator, svc *arcgis.ServiceInfo, lines []ShapeLine) error {
	var coords []LatLon
	for _, line := range lines {
		coords = append(coords, line.Coordinates...)
	}
	projected, err := translator.Translate(ctx, coords)
	if err != nil {
		return err
	}
	features, err := ShapeFeatures(lines, projected)
	if err != nil {
		return err
	}
	var group errgroup.Group
	for _, c := range chunk(features, translator.chunkSize()) {
		c := c
		group.Go(func() error {
			return conn.AddFeatures(ctx, svc, ShapesLayerID, c)
		})
	}
	return group.Wait()
}

func serviceDefinition(name string) arcgis.ServiceDefinition {
	sr := arcgis.WebMercator
	return arcgis.ServiceDefinition{
		Name:               name,
		ServiceDescription: "Transit stops and route shapes",
		Capabilities:       "Query,Editing,Create",
		SpatialReference:   &sr,
	}
}

func stopsLayerDefinition() arcgis.LayerDefinition {
	symbol := StopSymbol()
	return arcgis.LayerDefinition{
		ID:            StopsLayerID,
		Name:          "Stops",
		GeometryType:  "esriGeometryPoint",
		ObjectIDField: "OBJECTID",
		Fields: []arcgis.Field{
			{Name: "OBJECTID", Type: "esriFieldTypeOID"},
			{Name: "stop_name", Type: "esriFieldTypeString", Length: 256},
			{Name: "stop_lat", Type: "esriFieldTypeDouble"},
			{Name: "stop_lon", Type: "esriFieldTypeDouble"},
		},
		DrawingInfo: &arcgis.DrawingInfo{
			Renderer: &arcgis.Renderer{Type: "simple", Symbol: &symbol},
		},
	}
}

func shapesLayerDefinition(renderer arcgis.Renderer) arcgis.LayerDefinition {
	return arcgis.LayerDefinition{
		ID:           ShapesLayerID,
		Name:         "Shapes",
		GeometryType: "esriGeometryPolyline",
		Fields: []arcgis.Field{
			{Name: "id", Type: "esriFieldTypeString", Length: 64},
			{Name: "shape_id", Type: "esriFieldTypeString", Length: 64},
		},
		DrawingInfo: &arcgis.DrawingInfo{Renderer: &renderer},
	}
}
