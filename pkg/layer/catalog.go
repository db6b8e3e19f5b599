package layer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrLayerNotFound is returned by Lookup when no layer has the given name.
var ErrLayerNotFound = errors.New("layer not found")

// Catalog lists layers and hands out snapshots of them.
type Catalog interface {
	// Layers returns every layer the catalog can read, sorted by name.
	Layers(ctx context.Context) ([]*Layer, error)

	// Lookup returns a fresh snapshot of the named layer. It returns an
	// error wrapping ErrLayerNotFound when the layer does not exist.
	Lookup(ctx context.Context, name string) (*Layer, error)
}

// LoadError reports a source that could not be read as a layer.
type LoadError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load layer from %s: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NewLoadError creates a new LoadError.
func NewLoadError(source string, cause error) *LoadError {
	return &LoadError{
		Source: source,
		Cause:  cause,
	}
}

// MemoryCatalog is an in-memory Catalog. It is safe for concurrent use.
type MemoryCatalog struct {
	mu     sync.RWMutex
	layers map[string]*Layer
}

// NewMemoryCatalog creates a catalog holding the given layers.
func NewMemoryCatalog(layers ...*Layer) *MemoryCatalog {
	c := &MemoryCatalog{layers: make(map[string]*Layer, len(layers))}
	for _, l := range layers {
		c.layers[l.Name] = l
	}
	return c
}

// Add inserts or replaces a layer.
func (c *MemoryCatalog) Add(l *Layer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers[l.Name] = l
}

// Remove deletes a layer by name.
func (c *MemoryCatalog) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.layers, name)
}

// Layers implements Catalog.
func (c *MemoryCatalog) Layers(ctx context.Context) ([]*Layer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Layer, 0, len(c.layers))
	for _, l := range c.layers {
		out = append(out, l)
	}
	sortLayers(out)
	return out, nil
}

// Lookup implements Catalog.
func (c *MemoryCatalog) Lookup(ctx context.Context, name string) (*Layer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.layers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
	}
	return l, nil
}

func sortLayers(layers []*Layer) {
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].Name < layers[j].Name
	})
}
