package optimize

import (
	"testing"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
	"github.com/passbi/railplan/internal/pathfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTwoRouteFixture gives two independent single-trip routes A->B
// and A->C->B, so a group from A to B has two genuinely different
// candidate paths to swap between.
func buildTwoRouteFixture(t *testing.T) (*graph.Graph, model.GroupSpec, model.CandidateSet) {
	t.Helper()
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 1},
		{TripID: 2, FromStop: 1, Departure: 0, ToStop: 3, Arrival: 8, Capacity: 10},
		{TripID: 3, FromStop: 3, Departure: 9, ToStop: 2, Arrival: 18, Capacity: 10},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	spec := model.GroupSpec{ID: 1, Origin: 1, Departure: 0, Destination: 2, Arrival: 25, Passengers: 1}
	bound := pathfinder.ComputeArrivalBound(g, 2)
	w := pathfinder.NewWorker(g.NodeCount())
	cfg := pathfinder.DefaultConfig()
	cfg.MinPaths = 1
	set, err := w.FindPaths(g, spec, bound, cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, set.Paths)
	return g, spec, set
}

func TestNewState_InitialAssignment(t *testing.T) {
	g, spec, set := buildTwoRouteFixture(t)
	candidates := map[model.GroupID]model.CandidateSet{spec.ID: set}

	s := NewState(g, []model.GroupSpec{spec}, candidates, DefaultCostWeights)

	assert.Empty(t, s.Unroutable)
	assert.Equal(t, set.Paths[0], s.Path(spec.ID))
	assert.Equal(t, 0, s.CandidateIndex(spec.ID))
}

func TestNewState_UnroutableGroupExcluded(t *testing.T) {
	g, spec, _ := buildTwoRouteFixture(t)
	unroutable := model.GroupSpec{ID: 99, Origin: 1, Departure: 0, Destination: 1, Arrival: 0, Passengers: 1}

	candidates := map[model.GroupID]model.CandidateSet{
		spec.ID:       {Group: spec.ID, Paths: nil},
		unroutable.ID: {Group: unroutable.ID, Paths: nil},
	}
	s := NewState(g, []model.GroupSpec{spec, unroutable}, candidates, DefaultCostWeights)

	require.Len(t, s.Unroutable, 2)
	assert.Empty(t, s.Groups())
}

func TestState_ApplyUpdatesUtilisationIncrementally(t *testing.T) {
	g, spec, set := buildTwoRouteFixture(t)
	candidates := map[model.GroupID]model.CandidateSet{spec.ID: set}
	s := NewState(g, []model.GroupSpec{spec}, candidates, DefaultCostWeights)

	require.Greater(t, len(set.Paths), 0)
	before := s.Snapshot()

	if len(set.Paths) > 1 {
		s.Apply(spec.ID, set.Paths[1], 1)
		assert.NotEqual(t, before.Paths[spec.ID], s.Path(spec.ID))

		// The fixture's two routes share no strained edge: the old
		// route's load is gone and the new route carries the group.
		for _, eid := range before.Paths[spec.ID].Edges {
			if g.Edge(eid).Kind.Strained() {
				assert.Equal(t, 0, s.Utilisation(eid))
			}
		}
		for _, eid := range set.Paths[1].Edges {
			if g.Edge(eid).Kind.Strained() {
				assert.Equal(t, spec.Passengers, s.Utilisation(eid))
			}
		}
	}
}
