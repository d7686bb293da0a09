package ingest

import "fmt"

// validate checks that every station id referenced from trips,
// footpaths and groups is a known station, the way normalize.go
// cleans and cross-checks a GTFS feed before it reaches the graph
// builder. Input errors here are fatal.
func validate(in *InputSet) error {
	known := make(map[int]bool, len(in.Stations))
	for _, s := range in.Stations {
		known[int(s.ID)] = true
	}

	for _, t := range in.Trips {
		if !known[int(t.FromStop)] {
			return fmt.Errorf("%w: trip %d references unknown from_station %d", ErrDanglingReference, t.TripID, t.FromStop)
		}
		if !known[int(t.ToStop)] {
			return fmt.Errorf("%w: trip %d references unknown to_station %d", ErrDanglingReference, t.TripID, t.ToStop)
		}
	}

	for _, f := range in.Footpaths {
		if !known[int(f.From)] {
			return fmt.Errorf("%w: footpath references unknown from_station %d", ErrDanglingReference, f.From)
		}
		if !known[int(f.To)] {
			return fmt.Errorf("%w: footpath references unknown to_station %d", ErrDanglingReference, f.To)
		}
	}

	knownTrips := make(map[int]bool, len(in.Trips))
	for _, t := range in.Trips {
		knownTrips[int(t.TripID)] = true
	}

	for _, g := range in.Groups {
		if !known[int(g.Origin)] {
			return fmt.Errorf("%w: group %d references unknown start station %d", ErrDanglingReference, g.ID, g.Origin)
		}
		if !known[int(g.Destination)] {
			return fmt.Errorf("%w: group %d references unknown destination station %d", ErrDanglingReference, g.ID, g.Destination)
		}
		if g.HasInTrip && !knownTrips[int(g.InTrip)] {
			return fmt.Errorf("%w: group %d references unknown in_trip %d", ErrDanglingReference, g.ID, g.InTrip)
		}
	}

	return nil
}
