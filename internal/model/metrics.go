package model

// PathMetrics walks a resolved edge sequence the way a vehicle
// position estimator walks a path's edges by cumulative time: each
// edge advances a running clock, and the edge's kind decides which
// bucket (waiting, in-trip riding, walking) the duration falls into.
// This feeds both the metrics stored on each discovered Path and the
// per-group report fields (waiting_time, in_trip_time, walks).
func PathMetrics(edges []Edge) (duration, waiting, inTrip Minute, transfers, walks int) {
	for _, e := range edges {
		duration += e.Duration

		switch e.Kind {
		case EdgeRide, EdgeWaitInTrain:
			inTrip += e.Duration
		case EdgeWaitAtStation:
			waiting += e.Duration
		case EdgeWalk:
			walks++
			waiting += e.Duration
		case EdgeAlight, EdgeBoard:
			transfers++
		}
	}
	return duration, waiting, inTrip, transfers, walks
}

// Delay reports max(0, arrival-desiredArrival).
func Delay(arrival, desiredArrival Minute) Minute {
	if arrival > desiredArrival {
		return arrival - desiredArrival
	}
	return 0
}

// CumulativeArrival returns the time at which each node in a path is
// reached, given the path's starting time. Mirrors the
// elapsed-time-along-a-route walk used to estimate arrival at an
// arbitrary point of a journey, generalised from per-second vehicle
// progress to per-edge station progress.
func CumulativeArrival(start Minute, edges []Edge) []Minute {
	times := make([]Minute, len(edges)+1)
	times[0] = start
	for i, e := range edges {
		times[i+1] = times[i] + e.Duration
	}
	return times
}
