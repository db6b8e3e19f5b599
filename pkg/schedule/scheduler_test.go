package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"earthworks/strwriter/pkg/config"
	"earthworks/strwriter/pkg/export"
)

type fakeExporter struct {
	mu   sync.Mutex
	reqs []export.Request
	err  error
}

func (f *fakeExporter) Export(_ context.Context, req export.Request) (*export.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &export.Result{Layer: req.Layer, Path: req.Output}, nil
}

func TestJobsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Export.TargetCRS = "EPSG:3857"
	cfg.Export.AttributeField = "NAME"
	cfg.Export.DefaultZ = "100"
	cfg.Schedule.Jobs = []config.JobConfig{
		{Name: "roads", Cron: "0 6 * * *", Layer: "haul_roads", Output: "out/roads.str"},
		{Name: "collars", Cron: "*/15 * * * *", Layer: "collars", TargetCRS: "EPSG:4326", AttributeField: "HOLE", DefaultZ: "0"},
	}

	jobs := JobsFromConfig(cfg)
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}

	want := export.Request{
		Layer:     "haul_roads",
		TargetCRS: "EPSG:3857",
		Field:     "NAME",
		DefaultZ:  "100",
		Output:    "out/roads.str",
		Trigger:   export.TriggerSchedule,
	}
	if jobs[0].Request != want {
		t.Errorf("roads request = %+v, want %+v", jobs[0].Request, want)
	}

	got := jobs[1].Request
	if got.TargetCRS != "EPSG:4326" || got.Field != "HOLE" || got.DefaultZ != "0" {
		t.Errorf("collars request did not keep overrides: %+v", got)
	}
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		jobs        []Job
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			jobs:        []Job{{Name: "roads", Cron: "0 6 * * *"}},
			wantRunning: true,
		},
		{
			name:        "several jobs",
			jobs:        []Job{{Name: "roads", Cron: "0 * * * *"}, {Name: "collars", Cron: "*/5 * * * *"}},
			wantRunning: true,
		},
		{
			name: "no jobs - no error, not running",
		},
		{
			name:      "invalid schedule",
			jobs:      []Job{{Name: "roads", Cron: "0 6 * * *"}, {Name: "bad", Cron: "invalid cron"}},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(&fakeExporter{}, tt.jobs, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			defer s.Stop()

			if s.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", s.IsRunning(), tt.wantRunning)
			}

			for _, job := range tt.jobs {
				next := s.NextRun(job.Name)
				if tt.wantRunning {
					if next == nil {
						t.Errorf("NextRun(%s) = nil for running scheduler", job.Name)
					} else if !next.After(time.Now()) {
						t.Errorf("NextRun(%s) = %v, want a future time", job.Name, next)
					}
				} else if next != nil {
					t.Errorf("NextRun(%s) = %v, want nil", job.Name, next)
				}
			}
		})
	}
}

func TestScheduler_NextRunHourly(t *testing.T) {
	s := NewScheduler(&fakeExporter{}, []Job{{Name: "hourly", Cron: "0 * * * *"}}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer s.Stop()

	next := s.NextRun("hourly")
	if next == nil {
		t.Fatal("NextRun() returned nil")
	}
	if next.Minute() != 0 || next.Second() != 0 {
		t.Errorf("NextRun() = %v, want on the hour", next)
	}
	if time.Until(*next) > time.Hour {
		t.Errorf("NextRun() = %v, more than an hour away", next)
	}
	if s.NextRun("missing") != nil {
		t.Error("NextRun(missing) != nil")
	}
}

func TestScheduler_GracefulShutdown(t *testing.T) {
	s := NewScheduler(&fakeExporter{}, []Job{{Name: "roads", Cron: "0 6 * * *"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()

	deadline := time.Now().Add(time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after context cancellation")
	}
}

func TestScheduler_DoubleStart(t *testing.T) {
	s := NewScheduler(&fakeExporter{}, []Job{{Name: "roads", Cron: "0 6 * * *"}}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer s.Stop()

	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() error = nil")
	}

	s.Stop()
	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() after Stop")
	}
}

func TestScheduler_RunNow(t *testing.T) {
	exp := &fakeExporter{}
	jobs := []Job{{
		Name:    "roads",
		Cron:    "0 6 * * *",
		Request: export.Request{Layer: "haul_roads", Output: "out/roads.str", Trigger: export.TriggerSchedule},
	}}
	s := NewScheduler(exp, jobs, nil)

	var notified []string
	s.OnResult(func(job Job, _ *export.Result, err error) {
		notified = append(notified, job.Name)
	})

	res, err := s.RunNow(context.Background(), "roads")
	if err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if res.Path != "out/roads.str" {
		t.Errorf("path = %q", res.Path)
	}
	if len(exp.reqs) != 1 || exp.reqs[0] != jobs[0].Request {
		t.Errorf("requests = %+v", exp.reqs)
	}
	if len(notified) != 1 {
		t.Errorf("notified = %v", notified)
	}

	if _, err := s.RunNow(context.Background(), "nope"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("RunNow(nope) error = %v, want ErrUnknownJob", err)
	}
}

func TestScheduler_RunNowError(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler(&fakeExporter{err: boom}, []Job{{Name: "roads", Cron: "0 6 * * *"}}, nil)

	if _, err := s.RunNow(context.Background(), "roads"); !errors.Is(err, boom) {
		t.Errorf("RunNow() error = %v, want %v", err, boom)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]Job{{Name: "ok", Cron: "@hourly"}, {Name: "ok2", Cron: "0 6 * * 1-5"}}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := Validate([]Job{{Name: "bad", Cron: "61 * * * *"}}); err == nil {
		t.Error("Validate() accepted minute 61")
	}
}
