package gtfspublish

import (
	"strconv"

	"github.com/transitgeo/gtfspublish/arcgis"
)

// RGBA is a color as four channel values in [0,255].
type RGBA [4]int

// DefaultColor is used when a route's color field is empty or malformed.
var DefaultColor = RGBA{136, 136, 136, 255}

// ParseHexColor decodes a 6 hex digit RRGGBB string into an opaque color.
// Anything else, including the empty string, decodes to DefaultColor.
func ParseHexColor(s string) RGBA {
	if len(s) != 6 {
		return DefaultColor
	}
	var c RGBA
	for i := 0; i < 3; i++ {
		b, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return DefaultColor
		}
		c[i] = int(b)
	}
	c[3] = 255
	return c
}

// RouteColors resolves the display color of every route.
func RouteColors(routes []Route) map[string]RGBA {
	colors := make(map[string]RGBA, len(routes))
	for _, route := range routes {
		colors[route.Id] = ParseHexColor(route.Color)
	}
	return colors
}

// ShapeColors resolves shape colors through each trip's route. Shapes whose
// trips reference unknown routes get no entry; consumers must tolerate a
// shape with no color.
func ShapeColors(routes []Route, trips []Trip) map[string]RGBA {
	colors := RouteColors(routes)
	shapeColors := map[string]RGBA{}
	for _, trip := range trips {
		if trip.ShapeId == "" {
			continue
		}
		color, ok := colors[trip.RouteId]
		if !ok {
			continue
		}
		shapeColors[trip.ShapeId] = color
	}
	return shapeColors
}

// LineSymbol builds the solid line symbol descriptor for a shape color.
func LineSymbol(c RGBA) arcgis.Symbol {
	return arcgis.Symbol{
		Type:  "esriSLS",
		Style: "esriSLSSolid",
		Color: [4]int(c),
		Width: 2,
	}
}

// StopSymbol builds the marker symbol descriptor for the stops layer.
func StopSymbol() arcgis.Symbol {
	return arcgis.Symbol{
		Type:  "esriSMS",
		Style: "esriSMSCircle",
		Color: [4]int(DefaultColor),
		Size:  6,
	}
}

// ShapeRenderer builds the unique-value renderer drawing each shape line in
// its resolved route color. Shapes with no color entry draw with the default
// symbol.
func ShapeRenderer(colors map[string]RGBA, lines []ShapeLine) arcgis.Renderer {
	defaultSymbol := LineSymbol(DefaultColor)
	renderer := arcgis.Renderer{
		Type:          "uniqueValue",
		Field1:        "shape_id",
		DefaultSymbol: &defaultSymbol,
	}
	for _, line := range lines {
		color, ok := colors[line.ShapeId]
		if !ok {
			color = DefaultColor
		}
		renderer.UniqueValues = append(renderer.UniqueValues, arcgis.UniqueValue{
			Value:  line.ShapeId,
			Symbol: LineSymbol(color),
		})
	}
	return renderer
}
