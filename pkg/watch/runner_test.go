package watch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/layer"
)

type fakeExporter struct {
	mu   sync.Mutex
	reqs []export.Request
	fail map[string]error
}

func (f *fakeExporter) Export(_ context.Context, req export.Request) (*export.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if err := f.fail[req.Layer]; err != nil {
		return nil, err
	}
	return &export.Result{Layer: req.Layer, Path: req.Layer + export.FileExtension}, nil
}

func (f *fakeExporter) layers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.reqs {
		out = append(out, r.Layer)
	}
	return out
}

func runnerCatalog() layer.Catalog {
	return layer.NewMemoryCatalog(
		&layer.Layer{Name: "collars", Kind: layer.KindPoint, Source: "/data/collars.geojson"},
		&layer.Layer{Name: "haul_roads", Kind: layer.KindLine, Source: "/data/haul_roads.geojson"},
		&layer.Layer{Name: "pit_outline", Kind: layer.KindOther, Source: "/data/pit_outline.geojson"},
	)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunner_ExportChanged(t *testing.T) {
	tests := []struct {
		name   string
		layers []string
		paths  []string
		want   []string
	}{
		{
			name: "full run exports supported layers",
			want: []string{"collars", "haul_roads"},
		},
		{
			name:  "changed file maps to its layer",
			paths: []string{"/data/haul_roads.geojson"},
			want:  []string{"haul_roads"},
		},
		{
			name:  "unsupported layer change is ignored",
			paths: []string{"/data/pit_outline.geojson"},
		},
		{
			name:   "configured layers restrict the run",
			layers: []string{"haul_roads"},
			paths:  []string{"/data/collars.geojson", "/data/haul_roads.geojson"},
			want:   []string{"haul_roads"},
		},
		{
			name:   "missing configured layer is still attempted on full runs",
			layers: []string{"haul_roads", "benches"},
			want:   []string{"haul_roads", "benches"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &fakeExporter{}
			r := NewRunner(exp, runnerCatalog(), RunnerConfig{
				Layers:    tt.layers,
				TargetCRS: "EPSG:3857",
				DefaultZ:  "5",
			}, nil)

			results, err := r.ExportChanged(context.Background(), tt.paths)
			if err != nil {
				t.Fatalf("ExportChanged() error = %v", err)
			}
			if got := exp.layers(); !equalStrings(got, tt.want) {
				t.Errorf("exported %v, want %v", got, tt.want)
			}
			if len(results) != len(tt.want) {
				t.Errorf("results = %d, want %d", len(results), len(tt.want))
			}
			for _, req := range exp.reqs {
				if req.Trigger != export.TriggerWatch || req.TargetCRS != "EPSG:3857" || req.DefaultZ != "5" {
					t.Errorf("request = %+v", req)
				}
			}
		})
	}
}

func TestRunner_ExportChangedJoinsErrors(t *testing.T) {
	boom := errors.New("disk full")
	exp := &fakeExporter{fail: map[string]error{"collars": boom}}
	r := NewRunner(exp, runnerCatalog(), RunnerConfig{}, nil)

	var notified []string
	r.OnResult(func(layer string, res *export.Result, err error) {
		if err != nil {
			notified = append(notified, layer+":error")
			return
		}
		notified = append(notified, res.Layer)
	})

	results, err := r.ExportChanged(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if len(results) != 1 || results[0].Layer != "haul_roads" {
		t.Errorf("results = %+v, want haul_roads only", results)
	}
	if !equalStrings(notified, []string{"collars:error", "haul_roads"}) {
		t.Errorf("notified = %v", notified)
	}
}

func TestRunner_ExportChangedCancelled(t *testing.T) {
	exp := &fakeExporter{}
	r := NewRunner(exp, runnerCatalog(), RunnerConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.ExportChanged(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(exp.reqs) != 0 {
		t.Errorf("exported %v after cancellation", exp.layers())
	}
}
