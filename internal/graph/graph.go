// Package graph builds and holds the time-expanded timetable graph:
// an acyclic graph of Departure/Arrival/Transfer/Main*
// nodes connected by Ride/WaitInTrain/Alight/Board/WaitAtStation/Walk
// edges. The graph is built once, then frozen: every method on Graph
// is read-only and safe to call concurrently from the path finder's
// worker pool without locking.
package graph

import (
	"sort"

	"github.com/passbi/railplan/internal/model"
)

// successorPriority ranks edge kinds for DFS expansion order: Ride
// first (cheapest progress), then Board, Walk, WaitAtStation, Alight
// last.
func successorPriority(k model.EdgeKind) int {
	switch k {
	case model.EdgeRide:
		return 0
	case model.EdgeBoard:
		return 1
	case model.EdgeWalk:
		return 2
	case model.EdgeWaitAtStation:
		return 3
	case model.EdgeAlight:
		return 4
	default:
		return 5
	}
}

// Graph is the frozen, read-only time-expanded timetable graph.
type Graph struct {
	nodes []model.Node
	edges []model.Edge
	out   [][]model.EdgeID // outgoing edge ids per node id

	stations         map[model.StationID]model.Station
	stationTransfers map[model.StationID][]model.NodeID // time-ordered
	tripNodes        map[model.TripID][]model.NodeID    // time-ordered Departure/Arrival
	mainArrival      map[model.StationID]model.NodeID
	mainDeparture    map[model.StationID]model.NodeID
}

// Node returns the node with the given id.
func (g *Graph) Node(id model.NodeID) model.Node { return g.nodes[id] }

// Edge returns the edge with the given id.
func (g *Graph) Edge(id model.EdgeID) model.Edge { return g.edges[id] }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edges returns every edge in the graph. The graph is frozen after
// construction, so sharing the underlying slice for read-only
// iteration (e.g. building a reverse index for the DFS heuristic) is
// safe; callers must not mutate it.
func (g *Graph) Edges() []model.Edge { return g.edges }

// Out returns the outgoing edge ids of a node, in no particular order;
// callers that need the prioritized successor ordering use OutOrdered.
func (g *Graph) Out(id model.NodeID) []model.EdgeID { return g.out[id] }

// OutOrdered returns the outgoing edges of a node sorted by the
// successor expansion order: Ride, then Board, Walk, WaitAtStation,
// Alight; ties within a kind broken by earliest arrival time. This
// biases the depth-first search toward in-train progress.
func (g *Graph) OutOrdered(id model.NodeID) []model.EdgeID {
	edges := append([]model.EdgeID(nil), g.out[id]...)
	sort.Slice(edges, func(i, j int) bool {
		ei, ej := g.edges[edges[i]], g.edges[edges[j]]
		pi, pj := successorPriority(ei.Kind), successorPriority(ej.Kind)
		if pi != pj {
			return pi < pj
		}
		return g.nodes[ei.To].Time < g.nodes[ej.To].Time
	})
	return edges
}

// Station looks up station metadata by id.
func (g *Graph) Station(id model.StationID) (model.Station, bool) {
	s, ok := g.stations[id]
	return s, ok
}

// MainArrival returns the MainArrival sink node id for a station.
func (g *Graph) MainArrival(id model.StationID) model.NodeID { return g.mainArrival[id] }

// MainDeparture returns the MainDeparture source node id for a station.
func (g *Graph) MainDeparture(id model.StationID) model.NodeID { return g.mainDeparture[id] }

// StationTransfers returns the time-ordered Transfer node ids at a
// station.
func (g *Graph) StationTransfers(id model.StationID) []model.NodeID {
	return g.stationTransfers[id]
}

// TripNodes returns the time-ordered Departure/Arrival node ids of a
// trip.
func (g *Graph) TripNodes(id model.TripID) []model.NodeID {
	return g.tripNodes[id]
}

// StrainedEdges returns the ids of every Ride and WaitInTrain edge,
// the only edges the optimizer tracks utilisation against.
func (g *Graph) StrainedEdges() []model.EdgeID {
	ids := make([]model.EdgeID, 0)
	for _, e := range g.edges {
		if e.Kind.Strained() {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// ResolveGroupOrigin resolves a group's starting node. For a
// station-origin group it is MainDeparture(origin). For an in_trip
// group it is the Departure node of the named trip at the first stop
// whose departure minute is >= the group's departure minute; if the
// trip never departs at or after that minute, it falls back to the
// Arrival node of the first stop reachable at or after the group's
// departure minute.
func (g *Graph) ResolveGroupOrigin(spec model.GroupSpec) (model.NodeID, bool) {
	if !spec.HasInTrip {
		return g.MainDeparture(spec.Origin), true
	}

	nodes := g.tripNodes[spec.InTrip]
	for _, id := range nodes {
		n := g.nodes[id]
		if n.Kind == model.NodeDeparture && n.Time >= spec.Departure {
			return id, true
		}
	}
	for _, id := range nodes {
		n := g.nodes[id]
		if n.Kind == model.NodeArrival && n.Time >= spec.Departure {
			return id, true
		}
	}
	return 0, false
}
