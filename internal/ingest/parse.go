package ingest

import (
	"fmt"
	"path/filepath"

	"github.com/passbi/railplan/internal/model"
)

// InputSet holds the fully parsed, but not yet validated, contents of
// an input directory.
type InputSet struct {
	Stations  []model.Station
	Trips     []model.TripSegment
	Footpaths []model.Footpath
	Groups    []model.GroupSpec
}

// Load parses stations.csv, trips.csv, footpaths.csv and groups.csv
// from dir and validates all cross-references.
func Load(dir string) (*InputSet, error) {
	stations, err := parseStations(filepath.Join(dir, "stations.csv"))
	if err != nil {
		return nil, err
	}
	trips, err := parseTrips(filepath.Join(dir, "trips.csv"))
	if err != nil {
		return nil, err
	}
	footpaths, err := parseFootpaths(filepath.Join(dir, "footpaths.csv"))
	if err != nil {
		return nil, err
	}
	groups, err := parseGroups(filepath.Join(dir, "groups.csv"))
	if err != nil {
		return nil, err
	}

	in := &InputSet{Stations: stations, Trips: trips, Footpaths: footpaths, Groups: groups}
	if err := validate(in); err != nil {
		return nil, err
	}
	return in, nil
}

func parseStations(path string) ([]model.Station, error) {
	colMaps, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	colMap := colMaps[0]

	stations := make([]model.Station, 0, len(rows))
	for i, row := range rows {
		id, err := intField(colMap, row, "id", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		transfer, err := intField(colMap, row, "transfer", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		name, err := stringField(colMap, row, "name", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		stations = append(stations, model.Station{
			ID:           model.StationID(id),
			TransferTime: model.Minute(transfer),
			Name:         name,
		})
	}
	return stations, nil
}

func parseTrips(path string) ([]model.TripSegment, error) {
	colMaps, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	colMap := colMaps[0]

	trips := make([]model.TripSegment, 0, len(rows))
	for i, row := range rows {
		id, err := intField(colMap, row, "id", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		from, err := intField(colMap, row, "from_station", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		dep, err := intField(colMap, row, "departure", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		to, err := intField(colMap, row, "to_station", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		arr, err := intField(colMap, row, "arrival", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cap, err := intField(colMap, row, "capacity", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if arr < dep {
			return nil, fmt.Errorf("%w: %s: row %d: arrival %d before departure %d", ErrInputMalformed, path, i+2, arr, dep)
		}
		trips = append(trips, model.TripSegment{
			TripID:    model.TripID(id),
			FromStop:  model.StationID(from),
			Departure: model.Minute(dep),
			ToStop:    model.StationID(to),
			Arrival:   model.Minute(arr),
			Capacity:  cap,
		})
	}
	return trips, nil
}

func parseFootpaths(path string) ([]model.Footpath, error) {
	colMaps, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	colMap := colMaps[0]

	footpaths := make([]model.Footpath, 0, len(rows))
	for i, row := range rows {
		from, err := intField(colMap, row, "from_station", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		to, err := intField(colMap, row, "to_station", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		dur, err := intField(colMap, row, "duration", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		footpaths = append(footpaths, model.Footpath{
			From:     model.StationID(from),
			To:       model.StationID(to),
			Duration: model.Minute(dur),
		})
	}
	return footpaths, nil
}

func parseGroups(path string) ([]model.GroupSpec, error) {
	colMaps, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	colMap := colMaps[0]

	groups := make([]model.GroupSpec, 0, len(rows))
	for i, row := range rows {
		id, err := intField(colMap, row, "id", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		start, err := intField(colMap, row, "start", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		dep, err := intField(colMap, row, "departure", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		dest, err := intField(colMap, row, "destination", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		arr, err := intField(colMap, row, "arrival", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		pax, err := intField(colMap, row, "passengers", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		inTrip, hasInTrip, err := optionalIntField(colMap, row, "in_trip", path)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		groups = append(groups, model.GroupSpec{
			ID:          model.GroupID(id),
			Origin:      model.StationID(start),
			Departure:   model.Minute(dep),
			Destination: model.StationID(dest),
			Arrival:     model.Minute(arr),
			Passengers:  pax,
			InTrip:      model.TripID(inTrip),
			HasInTrip:   hasInTrip,
		})
	}
	return groups, nil
}
