package pathfinder

import (
	"testing"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinPaths = 1
	return cfg
}

func TestFindPaths_SingleHop(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 5},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	bound := ComputeArrivalBound(g, 2)
	w := NewWorker(g.NodeCount())
	spec := model.GroupSpec{ID: 1, Origin: 1, Departure: 0, Destination: 2, Arrival: 15, Passengers: 10}

	set, err := w.FindPaths(g, spec, bound, testConfig(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, set.Paths)

	path := set.Paths[0]
	assert.Equal(t, model.Minute(10), path.Duration)
	assert.Equal(t, model.Minute(0), path.Delay)
}

func TestFindPaths_TrivialSameStation(t *testing.T) {
	stations := []model.Station{{ID: 1, Name: "A"}}
	g, err := graph.Build(stations, nil, nil)
	require.NoError(t, err)

	w := NewWorker(g.NodeCount())
	spec := model.GroupSpec{ID: 1, Origin: 1, Departure: 0, Destination: 1, Arrival: 0, Passengers: 3}

	set, err := w.FindPaths(g, spec, nil, testConfig(), nil)
	require.NoError(t, err)
	require.Len(t, set.Paths, 1)

	path := set.Paths[0]
	require.Len(t, path.Edges, 1, "only the MainDeparture-MainArrival connector")
	assert.Equal(t, model.EdgeToMainArrival, g.Edge(path.Edges[0]).Kind)
	assert.Equal(t, 0.0, path.TravelCost)
	assert.Equal(t, model.Minute(0), path.Delay)
}

func TestFindPaths_RequiresFootpath(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 2, Departure: 10, ToStop: 3, Arrival: 20, Capacity: 5},
	}
	footpaths := []model.Footpath{{From: 1, To: 2, Duration: 5}}
	g, err := graph.Build(stations, trips, footpaths)
	require.NoError(t, err)

	bound := ComputeArrivalBound(g, 3)
	w := NewWorker(g.NodeCount())
	spec := model.GroupSpec{ID: 1, Origin: 1, Departure: 0, Destination: 3, Arrival: 30, Passengers: 1}

	set, err := w.FindPaths(g, spec, bound, testConfig(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, set.Paths)
}

func TestFindPaths_NoPathsFound(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
	}
	g, err := graph.Build(stations, nil, nil)
	require.NoError(t, err)

	bound := ComputeArrivalBound(g, 2)
	w := NewWorker(g.NodeCount())
	spec := model.GroupSpec{ID: 1, Origin: 1, Departure: 0, Destination: 2, Arrival: 30, Passengers: 1}

	_, err = w.FindPaths(g, spec, bound, testConfig(), nil)
	assert.ErrorIs(t, err, ErrNoPathsFound)
}

func TestFindPaths_InTripOrigin(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	trips := []model.TripSegment{
		{TripID: 7, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 5},
		{TripID: 7, FromStop: 2, Departure: 12, ToStop: 3, Arrival: 20, Capacity: 5},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	bound := ComputeArrivalBound(g, 3)
	w := NewWorker(g.NodeCount())
	spec := model.GroupSpec{
		ID: 1, Destination: 3, Arrival: 30, Passengers: 2,
		HasInTrip: true, InTrip: 7, Departure: 5,
	}

	set, err := w.FindPaths(g, spec, bound, testConfig(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, set.Paths)
}
