package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"earthworks/strwriter/pkg/crs"
	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/layer"
	"earthworks/strwriter/pkg/session"
)

// NoField is the field choice that writes "None" in every record.
const NoField = "(none)"

// ErrNoLayers is returned when the catalog has no line or point layers.
var ErrNoLayers = errors.New("no line or point layers available")

// StateStore loads and saves the last dialog values.
type StateStore interface {
	LoadState(ctx context.Context) (session.State, error)
	SaveState(ctx context.Context, st session.State) error
}

// Dialog asks for the export parameters one prompt at a time. It also
// implements export.PathPrompter.
type Dialog struct {
	driver   Driver
	catalog  layer.Catalog
	registry *crs.Registry
	state    StateStore
}

// NewDialog creates a Dialog. state may be nil, in which case nothing is
// pre-filled or remembered.
func NewDialog(driver Driver, catalog layer.Catalog, registry *crs.Registry, state StateStore) *Dialog {
	if registry == nil {
		registry = crs.NewRegistry()
	}
	return &Dialog{
		driver:   driver,
		catalog:  catalog,
		registry: registry,
		state:    state,
	}
}

// Ask prompts for every parameter of req, using req's values and then the
// saved session as defaults, and returns the completed request. Output is
// left as given; the save path is asked later through PromptSavePath.
func (d *Dialog) Ask(ctx context.Context, req export.Request) (export.Request, error) {
	last := d.loadState(ctx)

	layers, err := d.catalog.Layers(ctx)
	if err != nil {
		return req, err
	}
	supported := layer.Supported(layers)
	if len(supported) == 0 {
		return req, ErrNoLayers
	}

	chosen, err := d.askLayer(ctx, supported, firstNonEmpty(req.Layer, last.Layer))
	if err != nil {
		return req, err
	}
	req.Layer = chosen.Name

	sourceCRS := chosen.CRS
	if sourceCRS == "" {
		sourceCRS = crs.WGS84
	}
	req.TargetCRS, err = d.driver.Input(ctx, InputConfig{
		Message:   "Target CRS:",
		Default:   firstNonEmpty(req.TargetCRS, last.TargetCRS, sourceCRS),
		Help:      "Available from " + sourceCRS + ": " + strings.Join(d.registry.Targets(sourceCRS), ", "),
		Validator: validateCRS,
	})
	if err != nil {
		return req, err
	}

	req.Field, err = d.askField(ctx, chosen, firstNonEmpty(req.Field, last.Field))
	if err != nil {
		return req, err
	}

	req.DefaultZ, err = d.driver.Input(ctx, InputConfig{
		Message: "Default Z:",
		Default: firstNonEmpty(req.DefaultZ, last.DefaultZ, "0"),
		Help:    "Used when a vertex has no Z and the feature has no ELEV value. Text that is not a number means 0.",
	})
	if err != nil {
		return req, err
	}

	req.Trigger = export.TriggerCLI
	d.saveState(ctx, req)
	return req, nil
}

// PromptSavePath implements export.PathPrompter.
func (d *Dialog) PromptSavePath(ctx context.Context, layerName, suggested string) (string, error) {
	path, err := d.driver.Input(ctx, InputConfig{
		Message: fmt.Sprintf("Save %s as:", layerName),
		Default: suggested,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

func (d *Dialog) askLayer(ctx context.Context, layers []*layer.Layer, preferred string) (*layer.Layer, error) {
	options := make([]string, len(layers))
	def := 0
	for i, l := range layers {
		options[i] = l.Name
		if l.Name == preferred {
			def = i
		}
	}

	idx, err := d.driver.Select(ctx, SelectConfig{
		Message:      "Layer:",
		Options:      options,
		DefaultIndex: def,
		Help:         "Only line and point layers can be written.",
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(layers) {
		return nil, fmt.Errorf("invalid layer selection %d", idx)
	}
	return layers[idx], nil
}

func (d *Dialog) askField(ctx context.Context, l *layer.Layer, preferred string) (string, error) {
	options := append([]string{NoField}, l.Fields...)
	def := 0
	if i := l.FieldIndex(preferred); i >= 0 {
		def = i + 1
	}

	idx, err := d.driver.Select(ctx, SelectConfig{
		Message:      "Attribute field:",
		Options:      options,
		DefaultIndex: def,
	})
	if err != nil {
		return "", err
	}
	if idx <= 0 || idx >= len(options) {
		return "", nil
	}
	return options[idx], nil
}

func (d *Dialog) loadState(ctx context.Context) session.State {
	if d.state == nil {
		return session.State{}
	}
	st, err := d.state.LoadState(ctx)
	if err != nil {
		return session.State{}
	}
	return st
}

func (d *Dialog) saveState(ctx context.Context, req export.Request) {
	if d.state == nil {
		return
	}
	// Losing the remembered values only costs the next run its defaults.
	_ = d.state.SaveState(ctx, session.State{
		Layer:     req.Layer,
		Field:     req.Field,
		TargetCRS: req.TargetCRS,
		DefaultZ:  req.DefaultZ,
	})
}

func validateCRS(s string) error {
	_, err := crs.Normalize(s)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
