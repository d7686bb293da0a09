// Command gen_scenario writes a small, internally consistent
// stations.csv/trips.csv/footpaths.csv/groups.csv set for manually
// exercising railplan without a real timetable export on hand.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
)

func main() {
	outDir := flag.String("output_folder", "scenario", "Directory to write the four CSVs into")
	numStations := flag.Int("stations", 8, "Number of stations")
	numPhysicalTrips := flag.Int("trips", 12, "Number of physical trips (each covering several stations)")
	numGroups := flag.Int("groups", 15, "Number of passenger groups")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("❌ Failed to create %s: %v", *outDir, err)
	}

	log.Printf("🎲 Generating scenario: %d stations, %d physical trips, %d groups (seed=%d)", *numStations, *numPhysicalTrips, *numGroups, *seed)

	stationRows := genStations(*numStations, rng)
	if err := writeCSV(filepath.Join(*outDir, "stations.csv"), []string{"id", "transfer", "name"}, stationRows); err != nil {
		log.Fatalf("❌ Failed to write stations.csv: %v", err)
	}

	tripRows, tripCount := genTrips(*numStations, *numPhysicalTrips, rng)
	if err := writeCSV(filepath.Join(*outDir, "trips.csv"), []string{"id", "from_station", "departure", "to_station", "arrival", "capacity"}, tripRows); err != nil {
		log.Fatalf("❌ Failed to write trips.csv: %v", err)
	}

	footpathRows := genFootpaths(*numStations, rng)
	if err := writeCSV(filepath.Join(*outDir, "footpaths.csv"), []string{"from_station", "to_station", "duration"}, footpathRows); err != nil {
		log.Fatalf("❌ Failed to write footpaths.csv: %v", err)
	}

	groupRows := genGroups(*numStations, *numGroups, rng)
	if err := writeCSV(filepath.Join(*outDir, "groups.csv"), []string{"id", "start", "departure", "destination", "arrival", "passengers", "in_trip"}, groupRows); err != nil {
		log.Fatalf("❌ Failed to write groups.csv: %v", err)
	}

	log.Println("✅ Scenario written")
	log.Printf("📊 Stations: %d", *numStations)
	log.Printf("📊 Trip segments: %d (from %d physical trips)", tripCount, *numPhysicalTrips)
	log.Printf("📊 Footpaths: %d", len(footpathRows))
	log.Printf("📊 Groups: %d", *numGroups)
	log.Printf("📁 Written to %s/", *outDir)
}

func genStations(n int, rng *rand.Rand) [][]string {
	rows := make([][]string, 0, n)
	for id := 1; id <= n; id++ {
		transfer := 0
		if rng.Intn(3) == 0 {
			transfer = 2 + rng.Intn(4)
		}
		rows = append(rows, []string{
			itoa(id),
			itoa(transfer),
			fmt.Sprintf("Station %d", id),
		})
	}
	return rows
}

// genTrips builds numPhysicalTrips routes, each a random walk over 3-5
// distinct stations with strictly increasing times, and emits one row
// per consecutive pair under a shared trip id.
func genTrips(numStations, numPhysicalTrips int, rng *rand.Rand) ([][]string, int) {
	var rows [][]string
	segmentID := 1
	for trip := 1; trip <= numPhysicalTrips; trip++ {
		stops := 3 + rng.Intn(3)
		if stops > numStations {
			stops = numStations
		}
		route := rng.Perm(numStations)[:stops]
		capacity := 20 + rng.Intn(60)
		t := rng.Intn(120)
		for i := 0; i+1 < len(route); i++ {
			from := route[i] + 1
			to := route[i+1] + 1
			duration := 5 + rng.Intn(20)
			departure := t
			arrival := departure + duration
			rows = append(rows, []string{
				itoa(trip),
				itoa(from),
				itoa(departure),
				itoa(to),
				itoa(arrival),
				itoa(capacity),
			})
			segmentID++
			t = arrival + 2 + rng.Intn(5)
		}
	}
	return rows, segmentID - 1
}

func genFootpaths(n int, rng *rand.Rand) [][]string {
	var rows [][]string
	for a := 1; a <= n; a++ {
		for b := a + 1; b <= n; b++ {
			if rng.Intn(4) != 0 {
				continue
			}
			duration := 3 + rng.Intn(10)
			rows = append(rows, []string{itoa(a), itoa(b), itoa(duration)})
			rows = append(rows, []string{itoa(b), itoa(a), itoa(duration)})
		}
	}
	return rows
}

func genGroups(numStations, numGroups int, rng *rand.Rand) [][]string {
	rows := make([][]string, 0, numGroups)
	for id := 1; id <= numGroups; id++ {
		origin := 1 + rng.Intn(numStations)
		dest := origin
		for dest == origin {
			dest = 1 + rng.Intn(numStations)
		}
		departure := rng.Intn(60)
		arrival := departure + 90 + rng.Intn(120)
		passengers := 1 + rng.Intn(10)
		rows = append(rows, []string{
			itoa(id),
			itoa(origin),
			itoa(departure),
			itoa(dest),
			itoa(arrival),
			itoa(passengers),
			"",
		})
	}
	return rows
}

func itoa(v int) string { return fmt.Sprintf("%d", v) }

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
