package session

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earthworks/strwriter/pkg/export"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveState(context.Background(), State{Layer: "collars"}))
	st, err := s.LoadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "collars", st.Layer)
}

func TestStore_State(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	st, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{}, st, "fresh store has no state")

	saved := State{
		Layer:     "haul_roads",
		Field:     "ROAD_ID",
		TargetCRS: "EPSG:3857",
		DefaultZ:  "412.5",
		UpdatedAt: time.Unix(1724749200, 0),
	}
	require.NoError(t, s.SaveState(ctx, saved))

	st, err = s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.Layer, st.Layer)
	assert.Equal(t, saved.Field, st.Field)
	assert.Equal(t, saved.TargetCRS, st.TargetCRS)
	assert.Equal(t, saved.DefaultZ, st.DefaultZ)
	assert.True(t, saved.UpdatedAt.Equal(st.UpdatedAt))

	// Saving again replaces the single row.
	require.NoError(t, s.SaveState(ctx, State{Layer: "collars"}))
	st, err = s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "collars", st.Layer)
	assert.Empty(t, st.Field)
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestStore_StatePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveState(ctx, State{Layer: "pit_crest", DefaultZ: "5"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	st, err := s.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pit_crest", st.Layer)
	assert.Equal(t, "5", st.DefaultZ)
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 8, 27, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordRun(ctx, export.Run{
			RunID:       fmt.Sprintf("run-%d", i),
			Layer:       "haul_roads",
			Path:        "out/haul_roads.str",
			Trigger:     export.TriggerSchedule,
			Status:      "success",
			TargetCRS:   "EPSG:3857",
			DataLines:   10 * i,
			Terminators: i,
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
			FinishedAt:  base.Add(time.Duration(i)*time.Hour + time.Second),
		}))
	}

	runs, err := s.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].RunID, "newest first")
	assert.Equal(t, "run-1", runs[1].RunID)
	assert.Equal(t, 20, runs[0].DataLines)
	assert.Equal(t, export.TriggerSchedule, runs[0].Trigger)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Hour)))

	runs, err = s.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_RecordRunErrors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	assert.Error(t, s.RecordRun(ctx, export.Run{}), "run ID is required")

	run := export.Run{RunID: "dup", Status: "error", Error: "Layer x not found."}
	require.NoError(t, s.RecordRun(ctx, run))
	assert.Error(t, s.RecordRun(ctx, run), "duplicate run ID")

	runs, err := s.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Layer x not found.", runs[0].Error)
}

func TestStore_ImplementsHistoryRecorder(t *testing.T) {
	var _ export.HistoryRecorder = openTestStore(t)
}

func TestStore_CloseTwice(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()), "closed store")
}
