// Package pathfinder implements iterative-deepening multi-path search
// over a frozen time-expanded graph: given a group and a budget
// ladder, it returns every itinerary discovered within the smallest
// budget that yields enough candidates, in discovery order (the
// successor ordering biases early paths toward in-train progress; the
// paths are not sorted by travel cost).
package pathfinder

import (
	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
)

// DefaultBudgets is the ascending minute ladder the search widens
// through: each retry widens the deadline search horizon rather than
// restarting from scratch with an unrelated strategy.
var DefaultBudgets = []model.Minute{30, 35, 40, 45, 50, 55, 60}

// Config tunes one group's search.
type Config struct {
	Budgets  []model.Minute // tried in order until MinPaths is reached
	MinPaths int            // stop widening the budget once this many paths exist
	MaxPaths int            // hard cap per search, bounds memory on dense graphs
	Weights  model.Weights
}

// DefaultConfig mirrors the suggested budget-ladder constants.
func DefaultConfig() Config {
	return Config{
		Budgets:  DefaultBudgets,
		MinPaths: 50,
		MaxPaths: 200,
		Weights:  model.DefaultWeights,
	}
}

// Worker holds the reusable per-goroutine search scratch: a generation-
// stamped visited array sized to the graph, so that searching a group
// never allocates a fresh visited set. One Worker is owned by one pool
// goroutine and reused across every group it is handed.
type Worker struct {
	visited []int
	gen     int
}

// NewWorker allocates a Worker's scratch state for a graph of the given
// node count.
func NewWorker(nodeCount int) *Worker {
	return &Worker{visited: make([]int, nodeCount)}
}

// FindPaths runs the budget ladder for one group and returns every path
// discovered at the smallest budget that reached MinPaths, or the
// largest budget's result if none did. Returns ErrNoPathsFound if the
// group's origin cannot be resolved or no path exists at any budget.
func (w *Worker) FindPaths(g *graph.Graph, spec model.GroupSpec, bound *ArrivalBound, cfg Config, cancel <-chan struct{}) (model.CandidateSet, error) {
	origin, ok := g.ResolveGroupOrigin(spec)
	if !ok {
		return model.CandidateSet{}, ErrNoPathsFound
	}
	destMain := g.MainArrival(spec.Destination)

	maxPaths := cfg.MaxPaths
	if maxPaths <= 0 {
		maxPaths = 200
	}

	var found []model.Path
	for _, budget := range cfg.Budgets {
		select {
		case <-cancel:
			return finishSet(spec.ID, found), nil
		default:
		}

		horizon := spec.Arrival + budget
		found = w.search(g, origin, destMain, spec.Arrival, horizon, bound, cfg.Weights, maxPaths, cancel)
		if len(found) >= cfg.MinPaths {
			break
		}
	}

	if len(found) == 0 {
		return model.CandidateSet{}, ErrNoPathsFound
	}
	return finishSet(spec.ID, found), nil
}

func finishSet(id model.GroupID, paths []model.Path) model.CandidateSet {
	return model.CandidateSet{Group: id, Paths: paths}
}

// search runs one depth-first sweep bounded by horizon, using bound as
// an admissible pruning heuristic. Visited nodes are tracked per
// current path (unmarked on backtrack), not globally across the whole
// search, since the same node legitimately belongs to several distinct
// itineraries.
func (w *Worker) search(g *graph.Graph, origin, destMain model.NodeID, desiredArrival, horizon model.Minute, bound *ArrivalBound, weights model.Weights, maxPaths int, cancel <-chan struct{}) []model.Path {
	w.gen++
	gen := w.gen

	var results []model.Path
	nodes := []model.NodeID{origin}
	var edges []model.EdgeID

	var visit func(cur model.NodeID) bool
	visit = func(cur model.NodeID) bool {
		select {
		case <-cancel:
			return true
		default:
		}

		if cur == destMain {
			results = append(results, buildPath(g, nodes, edges, weights, desiredArrival))
			return len(results) >= maxPaths
		}

		for _, eid := range g.OutOrdered(cur) {
			e := g.Edge(eid)
			next := e.To
			if w.visited[next] == gen {
				continue
			}

			nextTime := g.Node(next).Time
			if bound != nil {
				if est := bound.Estimate(next); est != unreachable && nextTime+est > horizon {
					continue
				}
			}

			w.visited[next] = gen
			nodes = append(nodes, next)
			edges = append(edges, eid)

			stop := visit(next)

			nodes = nodes[:len(nodes)-1]
			edges = edges[:len(edges)-1]
			w.visited[next] = 0

			if stop {
				return true
			}
		}
		return false
	}

	w.visited[origin] = gen
	visit(origin)
	w.visited[origin] = 0

	return results
}

// buildPath materialises a discovered node/edge sequence into a Path
// with its travel cost and report metrics precomputed.
func buildPath(g *graph.Graph, nodes []model.NodeID, edges []model.EdgeID, weights model.Weights, desiredArrival model.Minute) model.Path {
	nodeIDs := append([]model.NodeID(nil), nodes...)
	edgeIDs := append([]model.EdgeID(nil), edges...)

	edgeVals := make([]model.Edge, len(edgeIDs))
	cost := 0.0
	for i, id := range edgeIDs {
		e := g.Edge(id)
		edgeVals[i] = e
		cost += model.EdgeCost(weights, e, 0)
	}

	duration, waiting, inTrip, transfers, walks := model.PathMetrics(edgeVals)

	// The last node is always MainArrival(destination), whose Time is
	// meaningless (always 0); the real arrival time is the station
	// event it was reached from, via a zero-duration connector.
	arrival := g.Node(nodeIDs[len(nodeIDs)-1]).Time
	if len(nodeIDs) >= 2 {
		arrival = g.Node(nodeIDs[len(nodeIDs)-2]).Time
	}

	return model.Path{
		Nodes:       nodeIDs,
		Edges:       edgeIDs,
		TravelCost:  cost,
		Duration:    duration,
		Transfers:   transfers,
		WaitingTime: waiting,
		InTripTime:  inTrip,
		WalkCount:   walks,
		ArrivalTime: arrival,
		Delay:       model.Delay(arrival, desiredArrival),
	}
}
