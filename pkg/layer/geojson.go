package layer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"earthworks/strwriter/pkg/crs"
)

// DefaultExtensions are the file extensions FileCatalog reads.
var DefaultExtensions = []string{".geojson", ".json"}

// FileCatalog reads layers from GeoJSON FeatureCollection files. The path is
// either a single file or a directory; directories are not walked
// recursively. Every call re-reads the files so callers always see the
// current state on disk.
type FileCatalog struct {
	path       string
	defaultCRS string
	extensions []string
	logger     *slog.Logger
}

// NewFileCatalog creates a catalog over path. Layers that do not declare a
// CRS are assigned defaultCRS.
func NewFileCatalog(path, defaultCRS string) *FileCatalog {
	return &FileCatalog{
		path:       path,
		defaultCRS: defaultCRS,
		extensions: DefaultExtensions,
		logger:     slog.Default().With("component", "layer.catalog"),
	}
}

// WithExtensions overrides the file extensions read from directories.
func (c *FileCatalog) WithExtensions(exts []string) *FileCatalog {
	if len(exts) > 0 {
		c.extensions = exts
	}
	return c
}

// WithLogger sets the logger used for skipped files.
func (c *FileCatalog) WithLogger(logger *slog.Logger) *FileCatalog {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Path returns the file or directory the catalog reads.
func (c *FileCatalog) Path() string {
	return c.path
}

// Layers implements Catalog. In directory mode unreadable files are logged
// and skipped; in single-file mode the read error is returned.
func (c *FileCatalog) Layers(ctx context.Context) ([]*Layer, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, NewLoadError(c.path, err)
	}

	if !info.IsDir() {
		l, err := ReadFile(c.path, c.defaultCRS)
		if err != nil {
			return nil, err
		}
		return []*Layer{l}, nil
	}

	files, err := c.files()
	if err != nil {
		return nil, NewLoadError(c.path, err)
	}

	seen := make(map[string]string, len(files))
	layers := make([]*Layer, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		l, err := ReadFile(file, c.defaultCRS)
		if err != nil {
			c.logger.Warn("skipping unreadable layer file", "path", file, "error", err)
			continue
		}
		if prev, dup := seen[l.Name]; dup {
			c.logger.Warn("duplicate layer name, keeping first",
				"layer", l.Name,
				"kept", prev,
				"skipped", file,
			)
			continue
		}
		seen[l.Name] = file
		layers = append(layers, l)
	}

	sortLayers(layers)
	return layers, nil
}

// Lookup implements Catalog.
func (c *FileCatalog) Lookup(ctx context.Context, name string) (*Layer, error) {
	layers, err := c.Layers(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range layers {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, name)
}

// files lists readable files in the catalog directory, sorted by path.
func (c *FileCatalog) files() ([]string, error) {
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !hasExtension(entry.Name(), c.extensions) {
			continue
		}
		files = append(files, filepath.Join(c.path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// ReadFile reads a GeoJSON FeatureCollection file as a layer. The layer is
// named after the collection's "name" member, or the file base name.
func ReadFile(path, defaultCRS string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewLoadError(path, err)
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	l, err := Decode(data, name, defaultCRS)
	if err != nil {
		return nil, NewLoadError(path, err)
	}
	l.Source = path
	return l, nil
}

type rawCollection struct {
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	CRS      *rawCRS      `json:"crs"`
	Features []rawFeature `json:"features"`
}

type rawCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type rawFeature struct {
	ID         json.RawMessage        `json:"id"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Decode parses a GeoJSON FeatureCollection. fallbackName is used when the
// collection has no "name" member. Z ordinates are preserved. Numeric
// properties are kept as json.Number so 12.0 is written back as 12.0.
func Decode(data []byte, fallbackName, defaultCRS string) (*Layer, error) {
	var raw rawCollection
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}
	if raw.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected a FeatureCollection, got %q", raw.Type)
	}

	l := &Layer{
		Name:   raw.Name,
		Fields: fieldOrder(data),
		CRS:    layerCRS(raw.CRS, defaultCRS),
	}
	if l.Name == "" {
		l.Name = fallbackName
	}

	index := make(map[string]int, len(l.Fields))
	for i, f := range l.Fields {
		index[f] = i
	}

	l.Features = make([]*Feature, 0, len(raw.Features))
	for n, rf := range raw.Features {
		g, err := decodeGeometry(rf.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", n, err)
		}

		attrs := make([]interface{}, len(l.Fields))
		for key, value := range rf.Properties {
			if i, ok := index[key]; ok {
				attrs[i] = value
			}
		}

		l.Features = append(l.Features, &Feature{
			ID:         featureID(rf.ID),
			Geometry:   g,
			Attributes: attrs,
		})
	}

	l.Kind = InferKind(l.Features)
	return l, nil
}

// fieldOrder collects property keys in first-seen document order. Go maps
// lose member order, so the raw document is scanned with gjson.
func fieldOrder(data []byte) []string {
	var fields []string
	seen := make(map[string]bool)
	gjson.GetBytes(data, "features").ForEach(func(_, feature gjson.Result) bool {
		feature.Get("properties").ForEach(func(key, _ gjson.Result) bool {
			if !seen[key.String()] {
				seen[key.String()] = true
				fields = append(fields, key.String())
			}
			return true
		})
		return true
	})
	return fields
}

func decodeGeometry(raw json.RawMessage) (geom.T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var g geom.T
	if err := geojson.Unmarshal(trimmed, &g); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	return g, nil
}

func featureID(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func layerCRS(raw *rawCRS, defaultCRS string) string {
	name := defaultCRS
	if raw != nil && raw.Properties.Name != "" {
		name = raw.Properties.Name
	}
	if code, err := crs.Normalize(name); err == nil {
		return code
	}
	return strings.TrimSpace(name)
}
