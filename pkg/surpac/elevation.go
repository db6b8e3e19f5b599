package surpac

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"

	"earthworks/strwriter/pkg/layer"
)

// Elevation source names, as reported in Stats.
const (
	SourceVertex  = "vertex"
	SourceField   = "field"
	SourceDefault = "default"
)

// VertexRef identifies the vertex whose elevation is being resolved.
type VertexRef struct {
	// Feature owns the vertex.
	Feature *layer.Feature

	// Index is the positional index used for the Z lookup. It indexes the
	// feature geometry's whole vertex sequence, so for multipart lines the
	// part-local vertex index reads from the start of the first part.
	Index int
}

// ElevationSource yields an elevation for a vertex, or reports that it has
// none.
type ElevationSource interface {
	Name() string
	Elevation(ref VertexRef) (float64, bool)
}

// VertexZ reads the Z ordinate of the geometry vertex at ref.Index.
type VertexZ struct{}

// Name implements ElevationSource.
func (VertexZ) Name() string { return SourceVertex }

// Elevation implements ElevationSource. 2D geometries have no Z.
func (VertexZ) Elevation(ref VertexRef) (float64, bool) {
	if ref.Feature == nil {
		return 0, false
	}
	return geometryZ(ref.Feature.Geometry, ref.Index)
}

func geometryZ(g geom.T, i int) (float64, bool) {
	if g == nil || i < 0 {
		return 0, false
	}
	zi := g.Layout().ZIndex()
	if zi < 0 {
		return 0, false
	}
	offset := i*g.Stride() + zi
	flat := g.FlatCoords()
	if offset >= len(flat) {
		return 0, false
	}
	return flat[offset], true
}

// FieldZ reads a numeric attribute, normally the ELEV field.
type FieldZ struct {
	// Index is the attribute index; negative means the layer has no such field.
	Index int
}

// Name implements ElevationSource.
func (FieldZ) Name() string { return SourceField }

// Elevation implements ElevationSource. Non-numeric values count as absent.
func (s FieldZ) Elevation(ref VertexRef) (float64, bool) {
	if s.Index < 0 || ref.Feature == nil {
		return 0, false
	}
	v, ok := ref.Feature.Attribute(s.Index)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// ConstantZ always yields its value.
type ConstantZ float64

// Name implements ElevationSource.
func (ConstantZ) Name() string { return SourceDefault }

// Elevation implements ElevationSource.
func (c ConstantZ) Elevation(VertexRef) (float64, bool) {
	return float64(c), true
}

// Chain tries each source in order.
type Chain []ElevationSource

// LineChain is the precedence for line vertices: vertex Z, then the ELEV
// field, then the default.
func LineChain(elevationField int, defaultZ float64) Chain {
	return Chain{VertexZ{}, FieldZ{Index: elevationField}, ConstantZ(defaultZ)}
}

// PointChain is the precedence for points. The vertex Z is not consulted.
func PointChain(elevationField int, defaultZ float64) Chain {
	return Chain{FieldZ{Index: elevationField}, ConstantZ(defaultZ)}
}

// Resolve returns the first non-NaN elevation in the chain and the name of the
// source that produced it. When every source is empty or NaN, fallback is
// returned under SourceDefault.
func (c Chain) Resolve(ref VertexRef, fallback float64) (float64, string) {
	for _, src := range c {
		z, ok := src.Elevation(ref)
		if ok && !math.IsNaN(z) {
			return z, src.Name()
		}
	}
	return fallback, SourceDefault
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ParseDefaultZ parses user-entered default elevation text. Text that is not a
// finite number yields 0.
func ParseDefaultZ(text string) float64 {
	z, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(z) || math.IsInf(z, 0) {
		return 0
	}
	return z
}
