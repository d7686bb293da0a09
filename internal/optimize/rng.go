package optimize

import "math/rand"

// NewRand returns a seedable generator. Every random choice in
// annealing — candidate selection, Metropolis acceptance, detour
// tie-breaks — draws from one generator passed explicitly through the
// call chain, so a run is fully reproducible from its seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
