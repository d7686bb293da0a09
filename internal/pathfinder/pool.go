package pathfinder

import (
	"context"
	"sync"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/model"
)

// Result pairs one group's search outcome with its error, so a failed
// group (no path found) doesn't stop the others.
type Result struct {
	Group model.GroupSpec
	Set   model.CandidateSet
	Err   error
}

// RunAll searches every group concurrently across a fixed pool of
// workers, each owning its own reusable DFS scratch state: no locking
// on the frozen graph, no shared mutable search state between
// goroutines. Bounds are precomputed once per distinct destination
// and shared read-only across workers, since ArrivalBound is itself
// immutable once computed.
//
// ctx cancellation stops in-flight and not-yet-started searches; RunAll
// always returns one Result per group, in no particular order.
func RunAll(ctx context.Context, g *graph.Graph, groups []model.GroupSpec, cfg Config, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}

	bounds := precomputeBounds(g, groups)

	jobs := make(chan model.GroupSpec)
	results := make(chan Result, len(groups))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			w := NewWorker(g.NodeCount())
			for spec := range jobs {
				set, err := w.FindPaths(g, spec, bounds[spec.Destination], cfg, ctx.Done())
				results <- Result{Group: spec, Set: set, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, spec := range groups {
			select {
			case jobs <- spec:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, 0, len(groups))
	seen := make(map[model.GroupID]bool, len(groups))
	for r := range results {
		out = append(out, r)
		seen[r.Group.ID] = true
	}
	// Groups never dispatched because ctx was cancelled first still get
	// a Result, carrying the cancellation error.
	for _, spec := range groups {
		if !seen[spec.ID] {
			out = append(out, Result{Group: spec, Err: ctx.Err()})
		}
	}
	return out
}

// precomputeBounds builds one ArrivalBound per distinct destination
// station referenced by groups, so concurrent workers never pay for
// the same Dijkstra relaxation twice.
func precomputeBounds(g *graph.Graph, groups []model.GroupSpec) map[model.StationID]*ArrivalBound {
	bounds := make(map[model.StationID]*ArrivalBound)
	for _, spec := range groups {
		if _, ok := bounds[spec.Destination]; !ok {
			bounds[spec.Destination] = ComputeArrivalBound(g, spec.Destination)
		}
	}
	return bounds
}
