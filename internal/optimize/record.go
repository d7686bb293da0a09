package optimize

// IterationRecord is one reporting-hook sample: emitted at every
// annealing iteration of both phases.
type IterationRecord struct {
	Phase       string
	Iteration   int
	Temperature float64
	Cost        float64
	EdgeCost    float64
	TravelCost  float64
	DelayCost   float64
}

// Emit receives iteration records. Annealing never blocks on it — a
// nil Emit is a valid no-op, and a real one backed by a bounded
// channel (internal/report) is expected to never itself block either.
type Emit func(IterationRecord)

func emit(fn Emit, phase string, iter int, temp float64, c Cost) {
	if fn == nil {
		return
	}
	fn(IterationRecord{
		Phase:       phase,
		Iteration:   iter,
		Temperature: temp,
		Cost:        c.Total,
		EdgeCost:    c.Edge,
		TravelCost:  c.Travel,
		DelayCost:   c.Delay,
	})
}
