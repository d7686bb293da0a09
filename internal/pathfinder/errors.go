package pathfinder

import "errors"

// ErrNoPathsFound is returned when a search exhausts every configured
// budget without reaching the destination's MainArrival node even
// once.
var ErrNoPathsFound = errors.New("pathfinder: no paths found within any configured budget")
