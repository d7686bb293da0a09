package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
	"github.com/passbi/railplan/internal/optimize"
	"github.com/passbi/railplan/internal/pathfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T) (*graph.Graph, *optimize.State, []model.GroupSpec) {
	t.Helper()
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 5},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	groups := []model.GroupSpec{
		{ID: 1, Origin: 1, Departure: 0, Destination: 2, Arrival: 15, Passengers: 3},
	}

	bound := pathfinder.ComputeArrivalBound(g, 2)
	w := pathfinder.NewWorker(g.NodeCount())
	cfg := pathfinder.DefaultConfig()
	cfg.MinPaths = 1
	set, err := w.FindPaths(g, groups[0], bound, cfg, nil)
	require.NoError(t, err)

	candidates := map[model.GroupID]model.CandidateSet{groups[0].ID: set}
	state := optimize.NewState(g, groups, candidates, optimize.DefaultCostWeights)
	return g, state, groups
}

func TestWriteGroups(t *testing.T) {
	g, state, groups := buildFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.csv")

	require.NoError(t, WriteGroups(path, groups, state, g))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "group_id,planned_time")
	assert.Contains(t, string(data), "A$0$main_departure")
}

func TestWriteEdges(t *testing.T) {
	g, state, _ := buildFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.csv")

	require.NoError(t, WriteEdges(path, g, state))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "edge_index,duration,capacity,utilization")
}

func TestWriteIterations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "iterations.csv")

	records := []optimize.IterationRecord{
		{Phase: "phase1", Iteration: 0, Temperature: 10, Cost: 5, EdgeCost: 1, TravelCost: 2, DelayCost: 2},
	}
	require.NoError(t, WriteIterations(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "time,temperature,cost")
}

func TestWriteRuntime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.csv")

	require.NoError(t, WriteRuntime(path, 1.5, 100))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1.500,100")
}

func TestReporter_DropsUnderBackpressure(t *testing.T) {
	// Construct directly (no drain goroutine running) so the channel
	// stays full deterministically, rather than racing a live drain.
	r := &Reporter{ch: make(chan optimize.IterationRecord, 1)}
	r.Record(optimize.IterationRecord{Iteration: 0})
	r.Record(optimize.IterationRecord{Iteration: 1})
	r.Record(optimize.IterationRecord{Iteration: 2})

	assert.Equal(t, int64(2), r.Dropped())
}

func TestReporter_RecordAndClose(t *testing.T) {
	r := NewReporter(16)
	r.Record(optimize.IterationRecord{Phase: "phase1", Iteration: 0})
	r.Record(optimize.IterationRecord{Phase: "phase2", Iteration: 0})

	phase1, phase2 := r.Close()
	assert.Len(t, phase1, 1)
	assert.Len(t, phase2, 1)
}
