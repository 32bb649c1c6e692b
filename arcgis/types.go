package arcgis

import (
	"fmt"
	"strings"
)

// SpatialReference names a coordinate system by its well-known id.
type SpatialReference struct {
	WKID int `json:"wkid"`
}

// WebMercator is the spatial reference hosted layers are published in.
var WebMercator = SpatialReference{WKID: 102100}

// Geometry is either a point (X and Y set) or a polyline (Paths set).
type Geometry struct {
	X                *float64          `json:"x,omitempty"`
	Y                *float64          `json:"y,omitempty"`
	Paths            [][][2]float64    `json:"paths,omitempty"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// PointGeometry builds a point in the target spatial reference.
func PointGeometry(x, y float64) *Geometry {
	return &Geometry{X: &x, Y: &y}
}

// PolylineGeometry builds a single-path polyline.
func PolylineGeometry(path [][2]float64) *Geometry {
	return &Geometry{Paths: [][][2]float64{path}}
}

// Feature is one geographic record of a layer.
type Feature struct {
	Geometry   *Geometry      `json:"geometry,omitempty"`
	Attributes map[string]any `json:"attributes"`
}

// FeatureSet is an ordered collection of features of one geometry type.
type FeatureSet struct {
	GeometryType string    `json:"geometryType,omitempty"`
	Features     []Feature `json:"features"`
}

// FeatureLayer pairs a layer definition with its generated features.
type FeatureLayer struct {
	LayerDefinition LayerDefinition `json:"layerDefinition"`
	FeatureSet      FeatureSet      `json:"featureSet"`
}

// FeatureCollection is the payload returned by the generation service.
type FeatureCollection struct {
	Layers []FeatureLayer `json:"layers"`
}

// Features returns every generated feature in layer order.
func (fc *FeatureCollection) Features() []Feature {
	var out []Feature
	for _, layer := range fc.Layers {
		out = append(out, layer.FeatureSet.Features...)
	}
	return out
}

// PublishParameters is the schema description inferred by Analyze and passed
// back to Generate. It is treated as an opaque bag of settings.
type PublishParameters map[string]any

// Merge returns a copy of the parameters with overrides applied.
func (p PublishParameters) Merge(overrides PublishParameters) PublishParameters {
	merged := make(PublishParameters, len(p)+len(overrides))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// ServiceDefinition describes a feature service to be created.
type ServiceDefinition struct {
	Name               string            `json:"name"`
	ServiceDescription string            `json:"serviceDescription,omitempty"`
	Capabilities       string            `json:"capabilities,omitempty"`
	SpatialReference   *SpatialReference `json:"spatialReference,omitempty"`
}

// Field describes one attribute column of a layer.
type Field struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Alias  string `json:"alias,omitempty"`
	Length int    `json:"length,omitempty"`
}

// Symbol is a drawing descriptor for features of a layer.
type Symbol struct {
	Type  string  `json:"type"`
	Style string  `json:"style,omitempty"`
	Color [4]int  `json:"color"`
	Width float64 `json:"width,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// UniqueValue maps one attribute value to a symbol.
type UniqueValue struct {
	Value  string `json:"value"`
	Symbol Symbol `json:"symbol"`
}

// Renderer describes how a layer is drawn.
type Renderer struct {
	Type          string        `json:"type"`
	Field1        string        `json:"field1,omitempty"`
	Symbol        *Symbol       `json:"symbol,omitempty"`
	DefaultSymbol *Symbol       `json:"defaultSymbol,omitempty"`
	UniqueValues  []UniqueValue `json:"uniqueValueInfos,omitempty"`
}

// DrawingInfo carries the renderer of a layer definition.
type DrawingInfo struct {
	Renderer *Renderer `json:"renderer,omitempty"`
}

// LayerDefinition describes one layer appended to a service definition.
type LayerDefinition struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	GeometryType  string       `json:"geometryType"`
	ObjectIDField string       `json:"objectIdField,omitempty"`
	Fields        []Field      `json:"fields,omitempty"`
	DrawingInfo   *DrawingInfo `json:"drawingInfo,omitempty"`
}

// ServiceInfo identifies a feature service created on the platform.
type ServiceInfo struct {
	ItemID            string `json:"itemId"`
	Name              string `json:"name"`
	EncodedServiceURL string `json:"encodedServiceURL"`
}

// EditResult is the per-feature outcome of an append call.
type EditResult struct {
	ObjectID int        `json:"objectId"`
	Success  bool       `json:"success"`
	Error    *CallError `json:"error,omitempty"`
}

// CallError is an error payload returned by the platform.
type CallError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *CallError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Message, e.Code, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}
