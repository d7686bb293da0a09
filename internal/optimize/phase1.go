package optimize

import (
	"math"
	"math/rand"

	"github.com/passbi/railplan/internal/model"
)

// Phase1Config tunes the route-swap annealing run.
type Phase1Config struct {
	Iterations int // N1, default 15000

	// InitialTemperature and FinalTemperature drive the geometric
	// cooling schedule T_k = T0 * r^k. Leave both zero to have RunPhase1
	// calibrate T0 from a small sample of proposals (targeting ~80%
	// acceptance of the initial increases) and derive FinalTemperature
	// as T0 * 1e-3.
	InitialTemperature float64
	FinalTemperature   float64

	Rng    *rand.Rand
	Cancel <-chan struct{}
	Emit   Emit
}

// DefaultPhase1Config mirrors the suggested iteration count.
func DefaultPhase1Config(rng *rand.Rand) Phase1Config {
	return Phase1Config{Iterations: 15000, Rng: rng}
}

// Phase1Result is the best Assignment observed, plus the cost of the
// live state when the run ended (its last accepted assignment, which
// can be worse than Best). The state itself is left at that last
// assignment; callers that continue from Best call State.Restore.
type Phase1Result struct {
	Best  Snapshot
	Final Cost
}

// RunPhase1 performs N1 iterations of route-swap annealing over
// state, which must already hold each group's first candidate as its
// initial path.
func RunPhase1(state *State, cfg Phase1Config) Phase1Result {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 15000
	}
	rng := cfg.Rng
	if rng == nil {
		rng = NewRand(1)
	}

	swappable := swappableGroups(state)
	t0, tFinal := cfg.InitialTemperature, cfg.FinalTemperature
	if t0 <= 0 {
		t0 = calibrateT0(state, swappable, rng)
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
		emit(cfg.Emit, "phase1", k, temp, state.Cost())

		if len(swappable) == 0 {
			continue
		}
		g := swappable[rng.Intn(len(swappable))]
		idx := randomOtherCandidate(state, g, rng)
		if idx < 0 {
			continue
		}

		candidate := state.Candidates(g).Paths[idx]
		delta := state.Delta(g, candidate)
		if accept(delta, temp, rng) {
			state.Apply(g, candidate, idx)
			if state.Cost().Total < best.Cost.Total {
				best = state.Snapshot()
			}
		}
	}

	return Phase1Result{Best: best, Final: state.Cost()}
}

// swappableGroups excludes groups with only one candidate: there is no
// alternative to propose for them.
func swappableGroups(s *State) []model.GroupID {
	ids := make([]model.GroupID, 0, len(s.Groups()))
	for _, spec := range s.Groups() {
		if len(s.Candidates(spec.ID).Paths) > 1 {
			ids = append(ids, spec.ID)
		}
	}
	return ids
}

func randomOtherCandidate(s *State, g model.GroupID, rng *rand.Rand) int {
	paths := s.Candidates(g).Paths
	current := s.CandidateIndex(g)
	if len(paths) <= 1 {
		return -1
	}
	for {
		i := rng.Intn(len(paths))
		if i != current {
			return i
		}
	}
}

// accept implements the Metropolis criterion: always take an
// improvement, otherwise take a worsening move with probability
// exp(-delta/T).
func accept(delta, temperature float64, rng *rand.Rand) bool {
	if delta < 0 {
		return true
	}
	if temperature <= 0 {
		return false
	}
	return rng.Float64() < math.Exp(-delta/temperature)
}

// calibrateT0 samples a handful of random proposals without committing
// them, and solves for the temperature at which ~80% of the positive
// deltas among them would be accepted.
func calibrateT0(s *State, swappable []model.GroupID, rng *rand.Rand) float64 {
	const sampleSize = 100
	const defaultT0 = 1.0
	const targetAcceptance = 0.8

	if len(swappable) == 0 {
		return defaultT0
	}

	var sum float64
	var n int
	for i := 0; i < sampleSize; i++ {
		g := swappable[rng.Intn(len(swappable))]
		idx := randomOtherCandidate(s, g, rng)
		if idx < 0 {
			continue
		}
		delta := s.Delta(g, s.Candidates(g).Paths[idx])
		if delta > 0 {
			sum += delta
			n++
		}
	}
	if n == 0 {
		return defaultT0
	}
	avg := sum / float64(n)
	return -avg / math.Log(targetAcceptance)
}

// coolingRatio solves r in T0 * r^N = tFinal.
func coolingRatio(t0, tFinal float64, iterations int) float64 {
	if iterations <= 0 || t0 <= 0 || tFinal <= 0 {
		return 1
	}
	return math.Pow(tFinal/t0, 1/float64(iterations))
}
