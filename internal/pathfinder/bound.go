package pathfinder

import (
	"container/heap"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
)

// ArrivalBound is a precomputed per-destination earliest-remaining-
// time table: for every node, a lower bound on the time still needed
// to reach MainArrival(destination). It is the "reasonable
// strengthening" of the admissible DFS pruning heuristic h, used
// instead of the degenerate h=0 — built once per destination station
// by relaxing the reversed graph with edge durations as weights,
// which never overestimates true travel time.
type ArrivalBound struct {
	dist map[model.NodeID]model.Minute
}

const unreachable = model.Minute(1 << 30)

// Estimate returns the lower bound at n, or unreachable if n cannot
// reach the destination at all (in which case DFS should not prune
// it away — an unreachable estimate just disables the bound there).
func (b *ArrivalBound) Estimate(n model.NodeID) model.Minute {
	if d, ok := b.dist[n]; ok {
		return d
	}
	return unreachable
}

type boundItem struct {
	node model.NodeID
	dist model.Minute
}

type boundHeap []boundItem

func (h boundHeap) Len() int            { return len(h) }
func (h boundHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h boundHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *boundHeap) Push(x interface{}) { *h = append(*h, x.(boundItem)) }
func (h *boundHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ComputeArrivalBound runs a single-source Dijkstra relaxation over
// the reversed graph, rooted at MainArrival(destination), with edge
// duration as weight.
func ComputeArrivalBound(g *graph.Graph, destination model.StationID) *ArrivalBound {
	reverse := make(map[model.NodeID][]model.Edge)
	for _, e := range g.Edges() {
		reverse[e.To] = append(reverse[e.To], e)
	}

	dist := make(map[model.NodeID]model.Minute)
	root := g.MainArrival(destination)
	dist[root] = 0

	h := &boundHeap{{node: root, dist: 0}}
	heap.Init(h)

	for h.Len() > 0 {
		cur := heap.Pop(h).(boundItem)
		if best, ok := dist[cur.node]; ok && cur.dist > best {
			continue
		}
		for _, e := range reverse[cur.node] {
			cand := cur.dist + e.Duration
			if best, ok := dist[e.From]; !ok || cand < best {
				dist[e.From] = cand
				heap.Push(h, boundItem{node: e.From, dist: cand})
			}
		}
	}

	return &ArrivalBound{dist: dist}
}
