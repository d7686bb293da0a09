// Package optimize implements the assignment state/cost model and the
// two simulated-annealing phases (route swap, on-path detour) that
// turn a graph and a set of per-group candidate paths into a final
// per-group Assignment.
package optimize

import (
	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
)

// CostWeights tunes the overall state cost function. Distinct from
// model.Weights, which scores an individual edge during DFS ranking;
// these three scale the aggregate edge/travel/delay totals against
// each other.
type CostWeights struct {
	Edge   float64
	Travel float64
	Delay  float64
}

// DefaultCostWeights are implementation-chosen constants, all
// positive, fixed for the run.
var DefaultCostWeights = CostWeights{Edge: 1.0, Travel: 1.0, Delay: 2.0}

// Cost is the decomposed total cost of a state, kept around so the
// Reporter can emit all four fields without recomputing them.
type Cost struct {
	Edge   float64
	Travel float64
	Delay  float64
	Total  float64
}

func (c Cost) sum(w CostWeights) Cost {
	c.Total = w.Edge*c.Edge + w.Travel*c.Travel + w.Delay*c.Delay
	return c
}

// overloadPenalty is 0 at or under capacity, and grows quadratically
// in the fraction over capacity above it.
func overloadPenalty(utilisation, capacity int) float64 {
	if capacity <= 0 || utilisation <= capacity {
		return 0
	}
	over := float64(utilisation)/float64(capacity) - 1
	return float64(capacity) * over * over
}

// State is the mutable optimizer state: one chosen Path per routable
// group, plus the utilisation vector and cost totals derived from it.
// It is the sole owner of utilisation and is never accessed from
// more than one goroutine.
type State struct {
	g       *graph.Graph
	weights CostWeights

	groups     []model.GroupSpec
	candidates map[model.GroupID]model.CandidateSet

	// Unroutable holds groups with an empty CandidateSet: a group
	// with no discovered path is non-fatal, and excluded from annealing.
	Unroutable []model.GroupSpec

	passengers map[model.GroupID]int
	groupSpec  map[model.GroupID]model.GroupSpec
	current    map[model.GroupID]model.Path
	candIdx    map[model.GroupID]int // -1 once a path has been synthesised (phase 2)

	capacity map[model.EdgeID]int // strained edges only
	util     map[model.EdgeID]int

	cost Cost
}

// NewState builds the initial state: every routable group is assigned
// its first (earliest-discovered) candidate path.
func NewState(g *graph.Graph, groups []model.GroupSpec, candidates map[model.GroupID]model.CandidateSet, weights CostWeights) *State {
	s := &State{
		g:          g,
		weights:    weights,
		candidates: candidates,
		passengers: make(map[model.GroupID]int, len(groups)),
		groupSpec:  make(map[model.GroupID]model.GroupSpec, len(groups)),
		current:    make(map[model.GroupID]model.Path, len(groups)),
		candIdx:    make(map[model.GroupID]int, len(groups)),
		capacity:   make(map[model.EdgeID]int),
		util:       make(map[model.EdgeID]int),
	}

	for _, e := range g.StrainedEdges() {
		s.capacity[e] = g.Edge(e).Capacity
	}

	for _, spec := range groups {
		s.passengers[spec.ID] = spec.Passengers
		s.groupSpec[spec.ID] = spec
		set := candidates[spec.ID]
		if len(set.Paths) == 0 {
			s.Unroutable = append(s.Unroutable, spec)
			continue
		}
		s.groups = append(s.groups, spec)
		s.current[spec.ID] = set.Paths[0]
		s.candIdx[spec.ID] = 0
		s.addUtil(set.Paths[0], spec.Passengers)
	}

	s.cost = s.fullCost()
	return s
}

// Groups returns the routable groups participating in annealing.
func (s *State) Groups() []model.GroupSpec { return s.groups }

// Candidates returns group g's discovered candidate paths.
func (s *State) Candidates(g model.GroupID) model.CandidateSet { return s.candidates[g] }

// Path returns group g's currently assigned path.
func (s *State) Path(g model.GroupID) model.Path { return s.current[g] }

// CandidateIndex returns the index of g's current path within its
// CandidateSet, or -1 if the path was synthesised in phase 2.
func (s *State) CandidateIndex(g model.GroupID) int { return s.candIdx[g] }

// Cost returns the cached, up-to-date cost breakdown.
func (s *State) Cost() Cost { return s.cost }

// Utilisation returns the current load on a strained edge.
func (s *State) Utilisation(e model.EdgeID) int { return s.util[e] }

// Capacity returns a strained edge's capacity.
func (s *State) Capacity(e model.EdgeID) int { return s.capacity[e] }

// StrainedEdgeIDs returns every strained edge id tracked by the state.
func (s *State) StrainedEdgeIDs() []model.EdgeID {
	ids := make([]model.EdgeID, 0, len(s.capacity))
	for e := range s.capacity {
		ids = append(ids, e)
	}
	return ids
}

// GroupsUsing returns the routable groups whose current path traverses
// edge e.
func (s *State) GroupsUsing(e model.EdgeID) []model.GroupID {
	var ids []model.GroupID
	for _, spec := range s.groups {
		for _, eid := range s.current[spec.ID].Edges {
			if eid == e {
				ids = append(ids, spec.ID)
				break
			}
		}
	}
	return ids
}

// SpliceDetour rebuilds group g's path by replacing the single edge at
// position edgeIdx with detourEdges, which must connect the same two
// nodes, and re-derives its cost and report metrics against the
// state's current utilisation.
func (s *State) SpliceDetour(g model.GroupID, edgeIdx int, detourEdges []model.EdgeID) model.Path {
	old := s.current[g]

	newEdges := make([]model.EdgeID, 0, len(old.Edges)-1+len(detourEdges))
	newEdges = append(newEdges, old.Edges[:edgeIdx]...)
	newEdges = append(newEdges, detourEdges...)
	newEdges = append(newEdges, old.Edges[edgeIdx+1:]...)

	newNodes := make([]model.NodeID, 0, len(newEdges)+1)
	newNodes = append(newNodes, old.Nodes[0])
	for _, eid := range newEdges {
		newNodes = append(newNodes, s.g.Edge(eid).To)
	}

	edgeVals := make([]model.Edge, len(newEdges))
	cost := 0.0
	for i, eid := range newEdges {
		e := s.g.Edge(eid)
		edgeVals[i] = e
		cost += model.EdgeCost(model.DefaultWeights, e, s.util[eid])
	}
	duration, waiting, inTrip, transfers, walks := model.PathMetrics(edgeVals)
	arrival := s.g.Node(newNodes[len(newNodes)-2]).Time

	desired := s.groupSpec[g].Arrival
	return model.Path{
		Nodes:       newNodes,
		Edges:       newEdges,
		TravelCost:  cost,
		Duration:    duration,
		Transfers:   transfers,
		WaitingTime: waiting,
		InTripTime:  inTrip,
		WalkCount:   walks,
		ArrivalTime: arrival,
		Delay:       model.Delay(arrival, desired),
	}
}

func (s *State) addUtil(p model.Path, passengers int) {
	for _, eid := range p.Edges {
		if _, strained := s.capacity[eid]; strained {
			s.util[eid] += passengers
		}
	}
}

func (s *State) removeUtil(p model.Path, passengers int) {
	for _, eid := range p.Edges {
		if _, strained := s.capacity[eid]; strained {
			s.util[eid] -= passengers
		}
	}
}

func (s *State) fullCost() Cost {
	var c Cost
	for e, u := range s.util {
		c.Edge += overloadPenalty(u, s.capacity[e])
	}
	for _, spec := range s.groups {
		p := s.current[spec.ID]
		pax := float64(spec.Passengers)
		c.Travel += pax * s.pathCost(p)
		c.Delay += pax * float64(p.Delay)
	}
	return c.sum(s.weights)
}

// pathCost re-derives a path's cost against the *current* shared
// utilisation, since load_factor changes as other groups are assigned.
func (s *State) pathCost(p model.Path) float64 {
	cost := 0.0
	for _, eid := range p.Edges {
		e := s.g.Edge(eid)
		cost += model.EdgeCost(model.DefaultWeights, e, s.util[eid])
	}
	return cost
}

// Delta computes the cost change from replacing group g's path with
// candidate, without mutating the state. Callers that accept the move
// must follow up with Apply.
func (s *State) Delta(g model.GroupID, candidate model.Path) float64 {
	before := s.cost.Total
	s.addUtil(candidate, s.passengers[g])
	s.removeUtil(s.current[g], s.passengers[g])
	after := s.recostAround(g, candidate)
	// Undo the speculative utilisation change; Apply repeats it for real.
	s.removeUtil(candidate, s.passengers[g])
	s.addUtil(s.current[g], s.passengers[g])
	return after - before
}

// recostAround recomputes the full cost with group g hypothetically
// reassigned to candidate; utilisation must already reflect the swap
// when this is called. A full edge-cost and travel-cost sweep is run
// (rather than a pure delta) because re-pricing one edge's overload
// penalty or one group's ride cost can shift every other group's
// travel_cost through the shared load_factor term.
func (s *State) recostAround(g model.GroupID, candidate model.Path) float64 {
	saved := s.current[g]
	s.current[g] = candidate
	c := s.fullCost()
	s.current[g] = saved
	return c.Total
}

// Apply commits a previously-proposed candidate for group g. idx is
// the candidate's index in g's CandidateSet, or -1 if synthesised.
func (s *State) Apply(g model.GroupID, candidate model.Path, idx int) {
	s.removeUtil(s.current[g], s.passengers[g])
	s.addUtil(candidate, s.passengers[g])
	s.current[g] = candidate
	s.candIdx[g] = idx
	s.cost = s.fullCost()
}

// Snapshot deep-copies the group->path assignment for best-so-far
// bookkeeping.
type Snapshot struct {
	Paths   map[model.GroupID]model.Path
	CandIdx map[model.GroupID]int
	Cost    Cost
}

// Snapshot captures the current assignment.
func (s *State) Snapshot() Snapshot {
	paths := make(map[model.GroupID]model.Path, len(s.current))
	idx := make(map[model.GroupID]int, len(s.candIdx))
	for g, p := range s.current {
		paths[g] = p
	}
	for g, i := range s.candIdx {
		idx[g] = i
	}
	return Snapshot{Paths: paths, CandIdx: idx, Cost: s.cost}
}

// Restore replaces the current assignment with a previously captured
// Snapshot, rebuilding utilisation from scratch.
func (s *State) Restore(snap Snapshot) {
	s.util = make(map[model.EdgeID]int)
	for g, p := range snap.Paths {
		s.current[g] = p
		s.candIdx[g] = snap.CandIdx[g]
		s.addUtil(p, s.passengers[g])
	}
	s.cost = snap.Cost
}
