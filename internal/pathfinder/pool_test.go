package pathfinder

import (
	"context"
	"testing"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll_MixedOutcomes(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 5},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	groups := []model.GroupSpec{
		{ID: 1, Origin: 1, Departure: 0, Destination: 2, Arrival: 20, Passengers: 4},
		{ID: 2, Origin: 1, Departure: 0, Destination: 3, Arrival: 20, Passengers: 4}, // unreachable
	}

	cfg := testConfig()
	results := RunAll(context.Background(), g, groups, cfg, 2)
	require.Len(t, results, 2)

	byGroup := make(map[model.GroupID]Result, 2)
	for _, r := range results {
		byGroup[r.Group.ID] = r
	}

	assert.NoError(t, byGroup[1].Err)
	assert.NotEmpty(t, byGroup[1].Set.Paths)
	assert.ErrorIs(t, byGroup[2].Err, ErrNoPathsFound)
}

func TestRunAll_CancellationStopsEarly(t *testing.T) {
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 5},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	groups := []model.GroupSpec{
		{ID: 1, Origin: 1, Departure: 0, Destination: 2, Arrival: 20, Passengers: 4},
	}
	results := RunAll(ctx, g, groups, testConfig(), 1)
	require.Len(t, results, 1)
}
