package pathfinder

import (
	"testing"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeArrivalBound_ZeroAtDestination(t *testing.T) {
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
	assert.Equal(t, model.Minute(0), bound.Estimate(g.MainArrival(2)))
}

func TestComputeArrivalBound_MonotoneTowardOrigin(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 5},
		{TripID: 1, FromStop: 2, Departure: 12, ToStop: 3, Arrival: 20, Capacity: 5},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	bound := ComputeArrivalBound(g, 3)
	depA := g.MainDeparture(1)
	depB := g.MainDeparture(2)

	assert.True(t, bound.Estimate(depA) >= bound.Estimate(depB),
		"origin further from the destination must have a bound at least as large")
}

func TestComputeArrivalBound_UnreachableDestination(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
	}
	g, err := graph.Build(stations, nil, nil)
	require.NoError(t, err)

	bound := ComputeArrivalBound(g, 2)
	// No trips connect A to B, so A's MainDeparture cannot reach B's
	// MainArrival; only B's own identity connector is reachable.
	assert.Equal(t, unreachable, bound.Estimate(g.MainDeparture(1)))
}
