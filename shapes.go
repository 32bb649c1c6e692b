package gtfspublish

import "sort"

// LatLon is a flat geographic coordinate pair.
type LatLon struct {
	Lat float64
	Lon float64
}

// ShapeLine is the ordered path of one shape id.
type ShapeLine struct {
	ShapeId     string
	Coordinates []LatLon
}

// AssembleShapes groups shape points by id and orders each group by
// ascending point sequence. Ids appear in first-seen order; points with equal
// sequence values keep their input order.
func AssembleShapes(points []ShapePoint) []ShapeLine {
	index := map[string]int{}
	var groups [][]ShapePoint
	var order []string
	for _, point := range points {
		i, ok := index[point.ShapeId]
		if !ok {
			i = len(groups)
			index[point.ShapeId] = i
			groups = append(groups, nil)
			order = append(order, point.ShapeId)
		}
		groups[i] = append(groups[i], point)
	}
	lines := make([]ShapeLine, len(groups))
	for i, group := range groups {
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].Sequence < group[b].Sequence
		})
		coordinates := make([]LatLon, len(group))
		for j, point := range group {
			coordinates[j] = LatLon{Lat: point.Lat, Lon: point.Lon}
		}
		lines[i] = ShapeLine{ShapeId: order[i], Coordinates: coordinates}
	}
	return lines
}
