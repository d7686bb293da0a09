package optimize

import (
	"math"
	"math/rand"
	"sort"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
)

// Phase2Config tunes the on-path detour annealing run.
type Phase2Config struct {
	Iterations int // N2, default 500

	// DetourSlack bounds how far past the detour's starting time the
	// substitute sub-path may wander (typically 10-20 minutes).
	DetourSlack model.Minute

	InitialTemperature float64 // typically higher than phase 1's terminal T
	FinalTemperature   float64

	Rng    *rand.Rand
	Cancel <-chan struct{}
	Emit   Emit
}

// DefaultPhase2Config mirrors the suggested iteration count, seeded from
// phase 1's terminal temperature.
func DefaultPhase2Config(rng *rand.Rand, phase1Terminal float64) Phase2Config {
	return Phase2Config{
		Iterations:         500,
		DetourSlack:        15,
		InitialTemperature: phase1Terminal * 10,
		FinalTemperature:   phase1Terminal * 10 * 1e-3,
		Rng:                rng,
	}
}

// RunPhase2 performs N2 iterations of on-path detour annealing,
// continuing from state as phase 1 left it, and returns the best
// Assignment observed across both phases.
func RunPhase2(g *graph.Graph, state *State, cfg Phase2Config) Phase1Result {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 500
	}
	rng := cfg.Rng
	if rng == nil {
		rng = NewRand(2)
	}
	if cfg.DetourSlack <= 0 {
		cfg.DetourSlack = 15
	}
	t0, tFinal := cfg.InitialTemperature, cfg.FinalTemperature
	if t0 <= 0 {
		t0 = 1.0
	}
	if tFinal <= 0 {
		tFinal = t0 * 1e-3
	}
	r := coolingRatio(t0, tFinal, cfg.Iterations)

	best := state.Snapshot()

	for k := 0; k < cfg.Iterations; k++ {
		select {
		case <-cfg.Cancel:
			return Phase1Result{Best: best, Final: state.Cost()}
		default:
		}

		temp := t0 * math.Pow(r, float64(k))
		emit(cfg.Emit, "phase2", k, temp, state.Cost())

		move, ok := proposeDetour(g, state, cfg.DetourSlack, rng)
		if !ok {
			continue
		}

		delta := state.Delta(move.group, move.path)
		if accept(delta, temp, rng) {
			state.Apply(move.group, move.path, -1)
			if state.Cost().Total < best.Cost.Total {
				best = state.Snapshot()
			}
		}
	}

	return Phase1Result{Best: best, Final: state.Cost()}
}

type detourMove struct {
	group model.GroupID
	path  model.Path
}

// proposeDetour finds the most overloaded strained edge, picks a
// random group riding it, and tries to route that group's path
// around it.
func proposeDetour(g *graph.Graph, state *State, slack model.Minute, rng *rand.Rand) (detourMove, bool) {
	e, ok := mostOverloadedEdge(state)
	if !ok {
		return detourMove{}, false
	}

	candidates := state.GroupsUsing(e)
	if len(candidates) == 0 {
		return detourMove{}, false
	}
	group := candidates[rng.Intn(len(candidates))]

	path := state.Path(group)
	edgeIdx := indexOf(path.Edges, e)
	if edgeIdx < 0 {
		return detourMove{}, false
	}

	from, to := path.Nodes[edgeIdx], path.Nodes[edgeIdx+1]
	detourEdges, found := detourSearch(g, from, to, e, slack)
	if !found {
		return detourMove{}, false
	}

	return detourMove{group: group, path: state.SpliceDetour(group, edgeIdx, detourEdges)}, true
}

// mostOverloadedEdge returns the strained edge with the highest
// utilisation/capacity ratio, ties broken by edge id. Edges at or
// under capacity are never selected — there is nothing to detour
// around.
func mostOverloadedEdge(state *State) (model.EdgeID, bool) {
	ids := state.StrainedEdgeIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	best := model.EdgeID(-1)
	bestRatio := 1.0
	for _, e := range ids {
		edgeCap := state.Capacity(e)
		if edgeCap <= 0 {
			continue
		}
		ratio := float64(state.Utilisation(e)) / float64(edgeCap)
		if ratio > bestRatio {
			bestRatio = ratio
			best = e
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func indexOf(edges []model.EdgeID, target model.EdgeID) int {
	for i, e := range edges {
		if e == target {
			return i
		}
	}
	return -1
}

// detourSearch runs a single-path depth-first search from "from" to
// "to", forbidding the overloaded edge itself and any node more than
// slack minutes past from's time — the same successor-ordered,
// per-path-visited DFS the candidate search uses, restricted to one
// path rather than a diverse candidate set, since phase 2 only needs
// *a* way around, not many.
func detourSearch(g *graph.Graph, from, to model.NodeID, forbidden model.EdgeID, slack model.Minute) ([]model.EdgeID, bool) {
	horizon := g.Node(from).Time + slack
	visited := make(map[model.NodeID]bool)
	var path []model.EdgeID

	var visit func(cur model.NodeID) bool
	visit = func(cur model.NodeID) bool {
		if cur == to {
			return true
		}
		for _, eid := range g.OutOrdered(cur) {
			if eid == forbidden {
				continue
			}
			e := g.Edge(eid)
			if visited[e.To] {
				continue
			}
			if g.Node(e.To).Time > horizon {
				continue
			}
			visited[e.To] = true
			path = append(path, eid)
			if visit(e.To) {
				return true
			}
			path = path[:len(path)-1]
			visited[e.To] = false
		}
		return false
	}

	visited[from] = true
	if visit(from) {
		return path, true
	}
	return nil, false
}
