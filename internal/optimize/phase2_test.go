package optimize

import (
	"testing"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildOverloadFixture builds a single through-trip A->B->C whose dwell
// at B (the WaitInTrain edge) has capacity 1. Two single-passenger
// groups are both pinned, as their sole enumerated candidate, onto the
// straight-through path — overloading the dwell to 2. The graph still
// offers an alight-then-reboard route through B's Transfer node that
// phase 2 should find as a detour, since its Board edge back onto the
// same trip is unstrained.
func buildOverloadFixture(t *testing.T) (*graph.Graph, []model.GroupSpec, map[model.GroupID]model.CandidateSet) {
	t.Helper()
	stations := []model.Station{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
	}
	trips := []model.TripSegment{
		{TripID: 1, FromStop: 1, Departure: 0, ToStop: 2, Arrival: 10, Capacity: 10},
		{TripID: 1, FromStop: 2, Departure: 12, ToStop: 3, Arrival: 20, Capacity: 1},
	}
	g, err := graph.Build(stations, trips, nil)
	require.NoError(t, err)

	groups := []model.GroupSpec{
		{ID: 1, Origin: 1, Departure: 0, Destination: 3, Arrival: 40, Passengers: 1},
		{ID: 2, Origin: 1, Departure: 0, Destination: 3, Arrival: 40, Passengers: 1},
	}

	path := straightThroughPath(t, g, 1, g.MainDeparture(1))
	candidates := map[model.GroupID]model.CandidateSet{
		1: {Group: 1, Paths: []model.Path{path}},
		2: {Group: 2, Paths: []model.Path{path}},
	}
	return g, groups, candidates
}

// straightThroughPath walks a trip's own node list end to end (never
// alighting along the way), connecting the origin's MainDeparture and
// the final arrival's MainArrival. It is a test-only shortcut standing
// in for what a real DFS would discover on an uncongested graph.
func straightThroughPath(t *testing.T, g *graph.Graph, trip model.TripID, origin model.NodeID) model.Path {
	t.Helper()
	tripNodes := g.TripNodes(trip)
	require.NotEmpty(t, tripNodes)

	nodes := []model.NodeID{origin}
	var edges []model.EdgeID
	cur := origin
	for _, next := range tripNodes {
		eid := findEdge(t, g, cur, next)
		edges = append(edges, eid)
		nodes = append(nodes, next)
		cur = next
	}

	last := g.Node(cur)
	mainArr := g.MainArrival(last.Station)
	eid := findEdge(t, g, cur, mainArr)
	edges = append(edges, eid)
	nodes = append(nodes, mainArr)

	edgeVals := make([]model.Edge, len(edges))
	for i, id := range edges {
		edgeVals[i] = g.Edge(id)
	}
	duration, waiting, inTrip, transfers, walks := model.PathMetrics(edgeVals)

	return model.Path{
		Nodes: nodes, Edges: edges,
		Duration: duration, WaitingTime: waiting, InTripTime: inTrip,
		Transfers: transfers, WalkCount: walks, ArrivalTime: last.Time,
	}
}

func findEdge(t *testing.T, g *graph.Graph, from, to model.NodeID) model.EdgeID {
	t.Helper()
	for _, eid := range g.Out(from) {
		if g.Edge(eid).To == to {
			return eid
		}
	}
	require.Fail(t, "no edge found", "from %d to %d", from, to)
	return -1
}

func TestMostOverloadedEdge_PicksOverCapacity(t *testing.T) {
	g, groups, candidates := buildOverloadFixture(t)
	s := NewState(g, groups, candidates, DefaultCostWeights)

	e, ok := mostOverloadedEdge(s)
	require.True(t, ok)
	assert.Equal(t, model.EdgeWaitInTrain, g.Edge(e).Kind)
	assert.Greater(t, s.Utilisation(e), s.Capacity(e))
}

func TestDetourSearch_FindsAlternateRoute(t *testing.T) {
	g, groups, candidates := buildOverloadFixture(t)
	s := NewState(g, groups, candidates, DefaultCostWeights)

	e, ok := mostOverloadedEdge(s)
	require.True(t, ok)

	path := s.Path(groups[0].ID)
	idx := indexOf(path.Edges, e)
	require.GreaterOrEqual(t, idx, 0)

	from, to := path.Nodes[idx], path.Nodes[idx+1]
	detour, found := detourSearch(g, from, to, e, 15)
	require.True(t, found, "expected an alight-then-reboard detour around the overloaded dwell")
	for _, eid := range detour {
		assert.NotEqual(t, e, eid)
	}
}

func TestRunPhase2_NeverWorsensBestCost(t *testing.T) {
	g, groups, candidates := buildOverloadFixture(t)
	s := NewState(g, groups, candidates, DefaultCostWeights)
	initial := s.Cost().Total

	cfg := DefaultPhase2Config(NewRand(3), 1.0)
	cfg.Iterations = 100
	result := RunPhase2(g, s, cfg)

	assert.LessOrEqual(t, result.Best.Cost.Total, initial+1e-9)
}

func TestRunPhase2_ResolvesOverload(t *testing.T) {
	g, groups, candidates := buildOverloadFixture(t)
	s := NewState(g, groups, candidates, DefaultCostWeights)

	cfg := DefaultPhase2Config(NewRand(11), 1.0)
	cfg.Iterations = 2000
	result := RunPhase2(g, s, cfg)

	assert.Equal(t, 0.0, result.Best.Cost.Edge, "a free detour exists; annealing should eventually take it")
}
