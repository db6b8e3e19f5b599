package layer

import (
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
)

// ElevationField is the attribute name holding a per-feature elevation.
const ElevationField = "ELEV"

// Kind is the geometry family of a layer.
type Kind int

const (
	// KindOther covers polygons, mixed layers and empty layers.
	KindOther Kind = iota
	// KindLine is a layer of LineString or MultiLineString features.
	KindLine
	// KindPoint is a layer of Point features.
	KindPoint
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindPoint:
		return "point"
	default:
		return "other"
	}
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "linestring", "polyline":
		return KindLine, nil
	case "point":
		return KindPoint, nil
	case "other", "":
		return KindOther, nil
	default:
		return KindOther, fmt.Errorf("unknown geometry kind: %s", s)
	}
}

// Layer is a snapshot of a vector layer.
type Layer struct {
	// Name identifies the layer in the catalog and the string file header.
	Name string

	// Kind is the geometry family shared by the layer's features.
	Kind Kind

	// Fields lists attribute names in schema order.
	Fields []string

	// CRS is the normalized source CRS code (e.g. "EPSG:4326").
	CRS string

	// Source is where the layer was read from, if anywhere.
	Source string

	// Features holds the layer's features in stored order.
	Features []*Feature
}

// FieldIndex returns the index of the named field, or -1 when absent.
// An empty name is always absent.
func (l *Layer) FieldIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, field := range l.Fields {
		if field == name {
			return i
		}
	}
	return -1
}

// ElevationIndex returns the index of the ELEV field, or -1.
func (l *Layer) ElevationIndex() int {
	return l.FieldIndex(ElevationField)
}

// Supported reports whether the layer can be written as a string file.
func (l *Layer) Supported() bool {
	return l.Kind == KindLine || l.Kind == KindPoint
}

// Feature is one geometry plus its attribute row.
type Feature struct {
	// ID is the feature identifier as found in the source, if any.
	ID string

	// Geometry is nil for features without geometry.
	Geometry geom.T

	// Attributes is indexed by the owning layer's field index.
	Attributes []interface{}
}

// Attribute returns the value at field index i. The second result is false
// when the index is out of range or the value is nil.
func (f *Feature) Attribute(i int) (interface{}, bool) {
	if i < 0 || i >= len(f.Attributes) {
		return nil, false
	}
	v := f.Attributes[i]
	return v, v != nil
}

// InferKind determines the layer kind from feature geometries. Null
// geometries are ignored; a layer with no geometries at all is KindOther.
func InferKind(features []*Feature) Kind {
	kind := KindOther
	seen := false
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		var k Kind
		switch g := f.Geometry.(type) {
		case *geom.LineString, *geom.MultiLineString:
			k = KindLine
		case *geom.Point:
			k = KindPoint
		case *geom.MultiPoint:
			if g.NumPoints() > 1 {
				return KindOther
			}
			k = KindPoint
		default:
			return KindOther
		}
		if seen && k != kind {
			return KindOther
		}
		kind = k
		seen = true
	}
	return kind
}

// Supported filters layers down to those that can be exported.
func Supported(layers []*Layer) []*Layer {
	var out []*Layer
	for _, l := range layers {
		if l.Supported() {
			out = append(out, l)
		}
	}
	return out
}
