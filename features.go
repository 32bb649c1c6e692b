package gtfspublish

import (
	"fmt"

	"github.com/transitgeo/gtfspublish/arcgis"
)

// StopFeatures converts one chunk of stops and their projected coordinates
// into publish-ready features. Only the whitelisted stop attributes are
// carried; nothing else from the source schema leaks through. startID seeds
// the synthetic object ids so concurrent chunks stay disjoint.
func StopFeatures(stops []Stop, projected []XY, startID int) ([]arcgis.Feature, error) {
	if len(stops) != len(projected) {
		return nil, fmt.Errorf("have %d projected coordinates for %d stops", len(projected), len(stops))
	}
	features := make([]arcgis.Feature, len(stops))
	for i, stop := range stops {
		features[i] = arcgis.Feature{
			Geometry: arcgis.PointGeometry(projected[i].X, projected[i].Y),
			Attributes: map[string]any{
				"OBJECTID":  startID + i,
				"stop_name": stop.Name,
				"stop_lat":  stop.Lat,
				"stop_lon":  stop.Lon,
			},
		}
	}
	return features, nil
}

// ShapeFeatures converts assembled shape lines and their projected
// coordinates into one single-path polyline feature per shape id, with the
// shape id serving as both the business key and the synthetic identifier.
// projected must hold the lines' coordinates flattened in line order.
func ShapeFeatures(lines []ShapeLine, projected []XY) ([]arcgis.Feature, error) {
	total := 0
	for _, line := range lines {
		total += len(line.Coordinates)
	}
	if total != len(projected) {
		return nil, fmt.Errorf("have %d projected coordinates for %d shape points", len(projected), total)
	}
	features := make([]arcgis.Feature, len(lines))
	next := 0
	for i, line := range lines {
		path := make([][2]float64, len(line.Coordinates))
		for j := range line.Coordinates {
			path[j] = [2]float64{projected[next].X, projected[next].Y}
			next++
		}
		features[i] = arcgis.Feature{
			Geometry: arcgis.PolylineGeometry(path),
			Attributes: map[string]any{
				"id":       line.ShapeId,
				"shape_id": line.ShapeId,
			},
		}
	}
	return features, nil
}
