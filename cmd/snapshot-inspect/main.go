// Command snapshot-inspect loads a snapshot pair written by railplan
// and prints structural statistics, without running any annealing.
// Useful for checking what a resumed run would actually pick up.
package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/passbi/railplan/internal/snapshot"
)

func main() {
	folder := flag.String("output_folder", ".", "Directory holding snapshot_model and snapshot_groups")
	flag.Parse()

	modelPath := filepath.Join(*folder, "snapshot_model")
	groupsPath := filepath.Join(*folder, "snapshot_groups")

	log.Println("📡 Loading graph snapshot...")
	startTime := time.Now()
	g, err := snapshot.ReadGraph(modelPath)
	if err != nil {
		log.Fatalf("❌ Failed to load %s: %v", modelPath, err)
	}
	log.Println("✅ Graph loaded")

	log.Println("📡 Loading candidate snapshot...")
	groups, candidates, err := snapshot.ReadCandidates(groupsPath, g)
	if err != nil {
		log.Fatalf("❌ Failed to load %s: %v", groupsPath, err)
	}
	log.Println("✅ Candidates loaded")

	duration := time.Since(startTime)

	strained := g.StrainedEdges()

	var totalPaths, unroutable, totalPassengers int
	for _, spec := range groups {
		totalPassengers += spec.Passengers
		set, ok := candidates[spec.ID]
		if !ok || len(set.Paths) == 0 {
			unroutable++
			continue
		}
		totalPaths += len(set.Paths)
	}

	log.Printf("📊 Graph statistics:")
	log.Printf("   Nodes: %d", g.NodeCount())
	log.Printf("   Edges: %d", g.EdgeCount())
	log.Printf("   Strained edges (ride/wait-in-train): %d", len(strained))
	log.Printf("📊 Group statistics:")
	log.Printf("   Groups: %d", len(groups))
	log.Printf("   Passengers: %d", totalPassengers)
	log.Printf("   Unroutable groups (no candidate path): %d", unroutable)
	if len(groups) > 0 {
		log.Printf("   Average candidates per group: %.1f", float64(totalPaths)/float64(len(groups)))
	}
	log.Printf("⏱️  Loaded in %v", duration)
}
