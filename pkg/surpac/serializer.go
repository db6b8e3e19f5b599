package surpac

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/twpayne/go-geom"

	"earthworks/strwriter/pkg/crs"
	"earthworks/strwriter/pkg/layer"
)

// ErrUnsupportedGeometryKind is returned for layers that are neither line
// nor point layers. Nothing is emitted in that case.
var ErrUnsupportedGeometryKind = errors.New("unsupported geometry kind")

// ErrInvalidInput is returned when required input is missing.
var ErrInvalidInput = errors.New("invalid serializer input")

// SerializeError reports a failure while serializing a feature.
type SerializeError struct {
	Layer   string // Layer being serialized
	Feature int    // Index of the feature in the input
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *SerializeError) Error() string {
	return fmt.Sprintf("serialize layer %s, feature %d: %v", e.Layer, e.Feature, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SerializeError) Unwrap() error {
	return e.Cause
}

// NewSerializeError creates a new SerializeError.
func NewSerializeError(layerName string, feature int, cause error) *SerializeError {
	return &SerializeError{
		Layer:   layerName,
		Feature: feature,
		Cause:   cause,
	}
}

// Input is everything needed to serialize one layer.
type Input struct {
	// LayerName is written verbatim in the header.
	LayerName string

	// Kind must be layer.KindLine or layer.KindPoint.
	Kind layer.Kind

	// Transform maps source (x, y) to target (x, y).
	Transform crs.Transform

	// ElevationField is the ELEV attribute index, or -1.
	ElevationField int

	// DisplayField is the attribute written in the last column, or -1 to
	// write "None".
	DisplayField int

	// DefaultZ is used when no other elevation is available. Must be finite.
	DefaultZ float64

	// Features are serialized in order.
	Features []*layer.Feature
}

// InputFromLayer builds an Input for l. displayField names the attribute for
// the last record column; an empty or unknown name writes "None".
func InputFromLayer(l *layer.Layer, t crs.Transform, displayField string, defaultZ float64) *Input {
	return &Input{
		LayerName:      l.Name,
		Kind:           l.Kind,
		Transform:      t,
		ElevationField: l.ElevationIndex(),
		DisplayField:   l.FieldIndex(displayField),
		DefaultZ:       defaultZ,
		Features:       l.Features,
	}
}

func (in *Input) validate() error {
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrInvalidInput)
	}
	if in.LayerName == "" {
		return fmt.Errorf("%w: empty layer name", ErrInvalidInput)
	}
	if in.Kind != layer.KindLine && in.Kind != layer.KindPoint {
		return fmt.Errorf("%w: %s", ErrUnsupportedGeometryKind, in.Kind)
	}
	if in.Transform == nil {
		return fmt.Errorf("%w: nil transform", ErrInvalidInput)
	}
	if math.IsNaN(in.DefaultZ) || math.IsInf(in.DefaultZ, 0) {
		return fmt.Errorf("%w: default z must be finite", ErrInvalidInput)
	}
	return nil
}

// Stats summarises one serialization.
type Stats struct {
	Features    int            // Features read from the input
	DataLines   int            // Data records written
	Terminators int            // Terminator records written
	Skipped     int            // Features whose geometry could not be written
	Elevation   map[string]int // Data records per elevation source
}

func newStats() *Stats {
	return &Stats{Elevation: make(map[string]int, 3)}
}

// Lines returns the total number of lines written, header and footer
// included.
func (s *Stats) Lines() int {
	return s.DataLines + s.Terminators + 4
}

// Serializer converts layer input into string file lines.
type Serializer struct {
	now func() time.Time
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithClock sets the clock used for the header date.
func WithClock(now func() time.Time) Option {
	return func(s *Serializer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSerializer creates a Serializer.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize emits every line of the string file for in, in order. It stops
// at the first emit or transform error; the context is checked between
// features.
func (s *Serializer) Serialize(ctx context.Context, in *Input, emit func(line string) error) (*Stats, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	stats := newStats()
	for _, line := range HeaderLines(in.LayerName, s.now()) {
		if err := emit(line); err != nil {
			return stats, err
		}
	}

	var chain Chain
	if in.Kind == layer.KindLine {
		chain = LineChain(in.ElevationField, in.DefaultZ)
	} else {
		chain = PointChain(in.ElevationField, in.DefaultZ)
	}

	for n, f := range in.Features {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if f == nil {
			stats.Skipped++
			continue
		}
		stats.Features++

		var err error
		if in.Kind == layer.KindLine {
			err = s.writeLine(in, f, chain, stats, emit)
		} else {
			err = s.writePoint(in, f, chain, stats, emit)
		}
		if err != nil {
			return stats, NewSerializeError(in.LayerName, n, err)
		}
	}

	for _, line := range FooterLines() {
		if err := emit(line); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Lines serializes in and returns the collected lines.
func (s *Serializer) Lines(ctx context.Context, in *Input) ([]string, *Stats, error) {
	var lines []string
	stats, err := s.Serialize(ctx, in, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	return lines, stats, err
}

// Write serializes in to w.
func (s *Serializer) Write(ctx context.Context, w io.Writer, in *Input) (*Stats, error) {
	return s.Serialize(ctx, in, func(line string) error {
		_, err := io.WriteString(w, line)
		return err
	})
}

func (s *Serializer) writeLine(in *Input, f *layer.Feature, chain Chain, stats *Stats, emit func(string) error) error {
	parts, ok := lineParts(f.Geometry)
	if !ok {
		stats.Skipped++
		return nil
	}

	attr := displayValue(in, f)
	for _, part := range parts {
		for i := 0; i < numCoords(part); i++ {
			c := part.Coord(i)
			x, y, err := in.Transform.Transform(c.X(), c.Y())
			if err != nil {
				return err
			}
			z, src := chain.Resolve(VertexRef{Feature: f, Index: i}, in.DefaultZ)
			if err := emit(DataLine(x, y, z, attr)); err != nil {
				return err
			}
			stats.DataLines++
			stats.Elevation[src]++
		}
		if err := emit(TerminatorLine); err != nil {
			return err
		}
		stats.Terminators++
	}
	return nil
}

func (s *Serializer) writePoint(in *Input, f *layer.Feature, chain Chain, stats *Stats, emit func(string) error) error {
	p, ok := singlePoint(f.Geometry)
	if !ok {
		stats.Skipped++
		return nil
	}

	x, y, err := in.Transform.Transform(p.X(), p.Y())
	if err != nil {
		return err
	}
	z, src := chain.Resolve(VertexRef{Feature: f, Index: 0}, in.DefaultZ)
	if err := emit(DataLine(x, y, z, displayValue(in, f))); err != nil {
		return err
	}
	stats.DataLines++
	stats.Elevation[src]++

	if err := emit(TerminatorLine); err != nil {
		return err
	}
	stats.Terminators++
	return nil
}

// lineParts splits a line geometry into its parts. A null geometry is one
// empty part, so it still produces a terminator.
func lineParts(g geom.T) ([]*geom.LineString, bool) {
	switch t := g.(type) {
	case nil:
		return []*geom.LineString{nil}, true
	case *geom.LineString:
		return []*geom.LineString{t}, true
	case *geom.MultiLineString:
		parts := make([]*geom.LineString, t.NumLineStrings())
		for i := range parts {
			parts[i] = t.LineString(i)
		}
		return parts, true
	default:
		return nil, false
	}
}

func numCoords(ls *geom.LineString) int {
	if ls == nil {
		return 0
	}
	return ls.NumCoords()
}

func singlePoint(g geom.T) (*geom.Point, bool) {
	switch t := g.(type) {
	case *geom.Point:
		if len(t.FlatCoords()) == 0 {
			return nil, false
		}
		return t, true
	case *geom.MultiPoint:
		if t.NumPoints() != 1 {
			return nil, false
		}
		return t.Point(0), true
	default:
		return nil, false
	}
}

func displayValue(in *Input, f *layer.Feature) string {
	if in.DisplayField < 0 {
		return noneAttribute
	}
	v, _ := f.Attribute(in.DisplayField)
	return FormatAttribute(v)
}
