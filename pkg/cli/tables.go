package cli

import (
	"strconv"
	"strings"
	"time"

	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/layer"
)

// LayerRow describes one catalog layer.
type LayerRow struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	CRS       string   `json:"crs"`
	Features  int      `json:"features"`
	Fields    []string `json:"fields"`
	Supported bool     `json:"supported"`
	Source    string   `json:"source,omitempty"`
}

// LayerTable is the output of "strwriter layers".
type LayerTable []LayerRow

// NewLayerTable builds rows for layers.
func NewLayerTable(layers []*layer.Layer) LayerTable {
	t := make(LayerTable, 0, len(layers))
	for _, l := range layers {
		t = append(t, LayerRow{
			Name:      l.Name,
			Kind:      l.Kind.String(),
			CRS:       l.CRS,
			Features:  len(l.Features),
			Fields:    l.Fields,
			Supported: l.Supported(),
			Source:    l.Source,
		})
	}
	return t
}

// Header implements Table.
func (t LayerTable) Header() []string {
	return []string{"NAME", "KIND", "CRS", "FEATURES", "FIELDS", "SUPPORTED"}
}

// Rows implements Table.
func (t LayerTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.Name,
			r.Kind,
			r.CRS,
			strconv.Itoa(r.Features),
			strings.Join(r.Fields, ","),
			strconv.FormatBool(r.Supported),
		})
	}
	return rows
}

// HistoryRow describes one recorded export run.
type HistoryRow struct {
	RunID       string    `json:"run_id"`
	Layer       string    `json:"layer"`
	Trigger     string    `json:"trigger"`
	Status      string    `json:"status"`
	Path        string    `json:"path,omitempty"`
	TargetCRS   string    `json:"target_crs,omitempty"`
	DataLines   int       `json:"data_lines"`
	Terminators int       `json:"terminators"`
	Skipped     int       `json:"skipped"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	Duration    string    `json:"duration"`
}

// HistoryTable is the output of "strwriter history".
type HistoryTable []HistoryRow

// NewHistoryTable builds rows for runs.
func NewHistoryTable(runs []export.Run) HistoryTable {
	t := make(HistoryTable, 0, len(runs))
	for _, r := range runs {
		t = append(t, HistoryRow{
			RunID:       r.RunID,
			Layer:       r.Layer,
			Trigger:     r.Trigger,
			Status:      r.Status,
			Path:        r.Path,
			TargetCRS:   r.TargetCRS,
			DataLines:   r.DataLines,
			Terminators: r.Terminators,
			Skipped:     r.Skipped,
			Error:       r.Error,
			StartedAt:   r.StartedAt,
			Duration:    r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
		})
	}
	return t
}

// Header implements Table.
func (t HistoryTable) Header() []string {
	return []string{"STARTED", "LAYER", "TRIGGER", "STATUS", "LINES", "PATH", "ERROR"}
}

// Rows implements Table.
func (t HistoryTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.StartedAt.Format(time.DateTime),
			r.Layer,
			r.Trigger,
			r.Status,
			strconv.Itoa(r.DataLines + r.Terminators),
			r.Path,
			r.Error,
		})
	}
	return rows
}
