package crs

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ErrUnsupportedTransform is returned when no transform is registered for a
// source/target pair.
var ErrUnsupportedTransform = errors.New("unsupported transform")

// Transform maps planar (x, y) from a source CRS into a target CRS.
type Transform interface {
	Transform(x, y float64) (float64, float64, error)
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc func(x, y float64) (float64, float64, error)

// Transform calls f(x, y).
func (f TransformFunc) Transform(x, y float64) (float64, float64, error) {
	return f(x, y)
}

// TransformError reports a coordinate that could not be transformed.
type TransformError struct {
	X, Y  float64
	Cause error
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("transform of (%g, %g) failed: %v", e.X, e.Y, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *TransformError) Unwrap() error {
	return e.Cause
}

// NewTransformError creates a new TransformError.
func NewTransformError(x, y float64, cause error) *TransformError {
	return &TransformError{X: x, Y: y, Cause: cause}
}

var errNotFinite = errors.New("coordinate is not finite")

// Identity returns a transform that only rejects non-finite input.
func Identity() Transform {
	return TransformFunc(func(x, y float64) (float64, float64, error) {
		if !finite(x, y) {
			return 0, 0, NewTransformError(x, y, errNotFinite)
		}
		return x, y, nil
	})
}

// FromProjection wraps an orb projection. Non-finite input or output is
// reported as a TransformError.
func FromProjection(p orb.Projection) Transform {
	return TransformFunc(func(x, y float64) (float64, float64, error) {
		if !finite(x, y) {
			return 0, 0, NewTransformError(x, y, errNotFinite)
		}
		out := p(orb.Point{x, y})
		if !finite(out[0], out[1]) {
			return 0, 0, NewTransformError(x, y, errNotFinite)
		}
		return out[0], out[1], nil
	})
}

// geographic restricts a transform to valid lon/lat input.
func geographic(t Transform) Transform {
	return TransformFunc(func(lon, lat float64) (float64, float64, error) {
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return 0, 0, NewTransformError(lon, lat, fmt.Errorf("outside geographic bounds"))
		}
		return t.Transform(lon, lat)
	})
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type pair struct {
	src, dst string
}

// Registry holds the transforms available for source/target pairs. It is safe
// for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	transforms map[pair]Transform
}

// NewRegistry creates a registry preloaded with the built-in transforms.
func NewRegistry() *Registry {
	r := &Registry{transforms: make(map[pair]Transform)}
	r.transforms[pair{WGS84, WebMercator}] = geographic(FromProjection(project.WGS84.ToMercator))
	r.transforms[pair{WebMercator, WGS84}] = FromProjection(project.Mercator.ToWGS84)
	return r
}

// Register adds or replaces the transform for src → dst.
func (r *Registry) Register(src, dst string, t Transform) error {
	s, err := Normalize(src)
	if err != nil {
		return err
	}
	d, err := Normalize(dst)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("nil transform for %s -> %s", s, d)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[pair{s, d}] = t
	return nil
}

// Transform returns the transform for src → dst. Equal codes yield Identity.
func (r *Registry) Transform(src, dst string) (Transform, error) {
	s, err := Normalize(src)
	if err != nil {
		return nil, err
	}
	d, err := Normalize(dst)
	if err != nil {
		return nil, err
	}
	if s == d {
		return Identity(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transforms[pair{s, d}]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupportedTransform, s, d)
	}
	return t, nil
}

// Targets lists the codes reachable from src, including src itself.
func (r *Registry) Targets(src string) []string {
	s, err := Normalize(src)
	if err != nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []string{s}
	for p := range r.transforms {
		if p.src == s {
			out = append(out, p.dst)
		}
	}
	sort.Strings(out[1:])
	return out
}
