// Command railplan is the full pipeline: read a timetable and a set
// of passenger groups, build the time-expanded graph, discover
// candidate paths per group, run two-phase simulated annealing to
// resolve overloaded edges, and write the resulting assignment and
// diagnostics as CSVs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/passbi/railplan/internal/graph"
	"github.com/passbi/railplan/internal/history"
	"github.com/passbi/railplan/internal/ingest"
	"github.com/passbi/railplan/internal/model"
	"github.com/passbi/railplan/internal/monitor"
	"github.com/passbi/railplan/internal/optimize"
	"github.com/passbi/railplan/internal/pathfinder"
	"github.com/passbi/railplan/internal/progresspub"
	"github.com/passbi/railplan/internal/report"
	"github.com/passbi/railplan/internal/snapshot"
)

const (
	exitOK             = 0
	exitInputError     = 1
	exitInternalError  = 2
	exitUserCancelled  = 130
)

func main() {
	input := flag.String("input", "", "Input directory with stations.csv/trips.csv/footpaths.csv/groups.csv (omit to resume from --output_folder's snapshot)")
	outputFolder := flag.String("output_folder", ".", "Directory for output CSVs and snapshot files")
	exportDot := flag.String("export_as_dot", "", "Optional path to write the timetable graph as GraphViz DOT")
	searchBudgets := flag.String("search_budgets", "30,35,40,45,50,55,60", "Comma-separated ascending minute budgets for path discovery")
	minPaths := flag.Int("min_paths", 50, "Stop widening the search budget once this many candidates are found")
	searchThreads := flag.Int("n_search_threads", 1, "Worker goroutines for concurrent path discovery")
	sa1Iterations := flag.Int("n_optimization_iterations_sa1", 15000, "Phase 1 (route swap) annealing iterations")
	sa2Iterations := flag.Int("n_optimization_iterations_sa2", 500, "Phase 2 (on-path detour) annealing iterations")
	seed := flag.Int64("seed", 1, "Seed for the annealing random generator")

	monitorAddr := flag.String("monitor_addr", "", "Optional address to serve live run status on (e.g. :8090); empty disables the monitor")
	monitorToken := flag.String("monitor_token", "", "Optional bearer token required by the monitor server")
	historyDSN := flag.String("history_dsn", "", "Optional Postgres DSN to record this run's summary to; empty disables history")
	redisAddr := flag.String("redis_addr", "", "Optional Redis address to publish progress to; empty disables publishing")

	flag.Parse()

	if *input == "" {
		if _, err := os.Stat(filepath.Join(*outputFolder, "snapshot_model")); err != nil {
			fmt.Println("Usage: railplan --input=<dir> [--output_folder=<dir>] [flags]")
			fmt.Println("       railplan --output_folder=<dir>   (resume from a prior snapshot)")
			flag.PrintDefaults()
			os.Exit(exitInputError)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	budgets, err := parseBudgets(*searchBudgets)
	if err != nil {
		log.Printf("invalid --search_budgets: %v", err)
		os.Exit(exitInputError)
	}

	os.Exit(run(ctx, runConfig{
		input:          *input,
		outputFolder:   *outputFolder,
		exportDot:      *exportDot,
		budgets:        budgets,
		minPaths:       *minPaths,
		searchThreads:  *searchThreads,
		sa1Iterations:  *sa1Iterations,
		sa2Iterations:  *sa2Iterations,
		seed:           *seed,
		monitorAddr:    *monitorAddr,
		monitorToken:   *monitorToken,
		historyDSN:     *historyDSN,
		redisAddr:      *redisAddr,
	}))
}

type runConfig struct {
	input         string
	outputFolder  string
	exportDot     string
	budgets       []model.Minute
	minPaths      int
	searchThreads int
	sa1Iterations int
	sa2Iterations int
	seed          int64

	monitorAddr  string
	monitorToken string
	historyDSN   string
	redisAddr    string
}

func parseBudgets(csv string) ([]model.Minute, error) {
	parts := strings.Split(csv, ",")
	budgets := make([]model.Minute, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		budgets = append(budgets, model.Minute(v))
	}
	return budgets, nil
}

func run(ctx context.Context, cfg runConfig) int {
	startTime := time.Now()

	if err := os.MkdirAll(cfg.outputFolder, 0o755); err != nil {
		log.Printf("failed to create output folder: %v", err)
		return exitInternalError
	}

	mon, err := startMonitor(cfg)
	if err != nil {
		log.Printf("monitor: %v", err)
		return exitInternalError
	}
	if mon != nil {
		defer mon.Shutdown()
	}

	hist, err := connectHistory(ctx, cfg)
	if err != nil {
		log.Printf("history: %v", err)
		return exitInternalError
	}
	if hist != nil {
		defer hist.Close()
	}

	pub, err := connectProgressPub(ctx, cfg)
	if err != nil {
		log.Printf("progresspub: %v", err)
		return exitInternalError
	}
	if pub != nil {
		defer pub.Close()
	}

	g, candidates, groups, err := loadOrBuild(ctx, cfg, mon)
	switch {
	case err == nil:
	case err == context.Canceled:
		return exitUserCancelled
	default:
		log.Printf("%v", err)
		return exitInputError
	}

	if cfg.exportDot != "" {
		log.Println("Step: exporting graph as DOT...")
		if err := report.WriteDOT(cfg.exportDot, g); err != nil {
			log.Printf("failed to write DOT export: %v", err)
			return exitInternalError
		}
	}

	weights := optimize.DefaultCostWeights
	state := optimize.NewState(g, groups, candidates, weights)
	log.Printf("✓ %d groups routable, %d unroutable", len(state.Groups()), len(state.Unroutable))

	reporter := report.NewReporter(4096)
	emit := reportingEmit(reporter, mon, pub, state)

	rng := optimize.NewRand(cfg.seed)

	log.Println("Step: phase 1 (route-swap annealing)...")
	p1cfg := optimize.DefaultPhase1Config(rng)
	p1cfg.Iterations = cfg.sa1Iterations
	p1cfg.Cancel = ctx.Done()
	p1cfg.Emit = emit
	p1 := optimize.RunPhase1(state, p1cfg)
	state.Restore(p1.Best)
	log.Printf("✓ phase 1 complete: cost=%.2f", state.Cost().Total)

	if ctx.Err() == nil {
		log.Println("Step: phase 2 (on-path detour annealing)...")
		p2cfg := optimize.DefaultPhase2Config(rng, p1.Final.Total)
		p2cfg.Iterations = cfg.sa2Iterations
		p2cfg.Cancel = ctx.Done()
		p2cfg.Emit = emit
		p2 := optimize.RunPhase2(g, state, p2cfg)
		state.Restore(p2.Best)
		log.Printf("✓ phase 2 complete: cost=%.2f", state.Cost().Total)
	}

	phase1Records, phase2Records := reporter.Close()
	if dropped := reporter.Dropped(); dropped > 0 {
		log.Printf("⚠ reporter dropped %d records under backpressure", dropped)
	}

	duration := time.Since(startTime)
	if err := writeOutputs(cfg, g, state, groups, phase1Records, phase2Records, duration); err != nil {
		log.Printf("failed to write outputs: %v", err)
		return exitInternalError
	}

	if hist != nil {
		runErr := hist.Record(ctx, history.Run{
			StartedAt:  startTime,
			Duration:   duration,
			Groups:     len(state.Groups()),
			Unroutable: len(state.Unroutable),
			TotalCost:  state.Cost().Total,
			EdgeCost:   state.Cost().Edge,
			TravelCost: state.Cost().Travel,
			DelayCost:  state.Cost().Delay,
		})
		if runErr != nil {
			log.Printf("⚠ failed to record run history: %v", runErr)
		}
	}

	log.Printf("✓ done in %v", duration)

	if ctx.Err() != nil {
		return exitUserCancelled
	}
	return exitOK
}

// loadOrBuild either ingests --input and runs path discovery fresh, or
// (when --input is empty) resumes from a prior run's snapshot files in
// --output_folder, skipping ingestion and discovery entirely.
func loadOrBuild(ctx context.Context, cfg runConfig, mon *monitor.Server) (*graph.Graph, map[model.GroupID]model.CandidateSet, []model.GroupSpec, error) {
	modelPath := filepath.Join(cfg.outputFolder, "snapshot_model")
	groupsPath := filepath.Join(cfg.outputFolder, "snapshot_groups")

	if cfg.input == "" {
		log.Println("Step: resuming from snapshot (no --input given)...")
		g, err := snapshot.ReadGraph(modelPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resume: %w", err)
		}
		groups, candidates, err := snapshot.ReadCandidates(groupsPath, g)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resume: %w", err)
		}
		if mon != nil {
			mon.SetGraphStats(monitor.GraphStats{Nodes: g.NodeCount(), Edges: g.EdgeCount(), StrainedEdges: len(g.StrainedEdges())})
		}
		return g, candidates, groups, nil
	}

	log.Println("Step 1/4: parsing input CSVs...")
	in, err := ingest.Load(cfg.input)
	if err != nil {
		return nil, nil, nil, err
	}

	log.Println("Step 2/4: building time-expanded graph...")
	g, err := graph.Build(in.Stations, in.Trips, in.Footpaths)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Printf("✓ graph built: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	if mon != nil {
		mon.SetGraphStats(monitor.GraphStats{Nodes: g.NodeCount(), Edges: g.EdgeCount(), StrainedEdges: len(g.StrainedEdges())})
	}

	log.Println("Step 3/4: discovering candidate paths...")
	pfCfg := pathfinder.Config{Budgets: cfg.budgets, MinPaths: cfg.minPaths, MaxPaths: 200, Weights: model.DefaultWeights}
	results := pathfinder.RunAll(ctx, g, in.Groups, pfCfg, cfg.searchThreads)

	candidates := make(map[model.GroupID]model.CandidateSet, len(results))
	for _, r := range results {
		candidates[r.Group.ID] = r.Set
	}
	log.Println("✓ candidate discovery complete")

	log.Println("Step 4/4: writing snapshot...")
	if err := snapshot.WriteGraph(modelPath, in.Stations, in.Trips, in.Footpaths); err != nil {
		log.Printf("⚠ failed to write snapshot graph: %v", err)
	}
	if err := snapshot.WriteCandidates(groupsPath, in.Groups, candidates); err != nil {
		log.Printf("⚠ failed to write snapshot candidates: %v", err)
	}

	return g, candidates, in.Groups, nil
}

func startMonitor(cfg runConfig) (*monitor.Server, error) {
	if cfg.monitorAddr == "" {
		return nil, nil
	}
	m := monitor.New(cfg.monitorToken)
	go func() {
		if err := m.Listen(cfg.monitorAddr); err != nil {
			log.Printf("monitor server stopped: %v", err)
		}
	}()
	return m, nil
}

func connectHistory(ctx context.Context, cfg runConfig) (*history.Sink, error) {
	if cfg.historyDSN == "" {
		return nil, nil
	}
	return history.Connect(ctx, cfg.historyDSN)
}

func connectProgressPub(ctx context.Context, cfg runConfig) (*progresspub.Publisher, error) {
	if cfg.redisAddr == "" {
		return nil, nil
	}
	return progresspub.Connect(ctx, progresspub.Config{Addr: cfg.redisAddr})
}

// reportingEmit fans a single IterationRecord out to every configured
// sink: the always-on in-memory Reporter, and the optional monitor and
// Redis publisher.
func reportingEmit(reporter *report.Reporter, mon *monitor.Server, pub *progresspub.Publisher, state *optimize.State) optimize.Emit {
	return func(rec optimize.IterationRecord) {
		reporter.Record(rec)
		if mon != nil {
			mon.Update(monitor.Status{
				Phase:      rec.Phase,
				Iteration:  rec.Iteration,
				Cost:       rec.Cost,
				Groups:     len(state.Groups()),
				Unroutable: len(state.Unroutable),
				Dropped:    reporter.Dropped(),
			})
		}
		if pub != nil {
			if err := pub.Publish(context.Background(), rec); err != nil {
				log.Printf("⚠ progresspub: %v", err)
			}
		}
	}
}

func writeOutputs(cfg runConfig, g *graph.Graph, state *optimize.State, groups []model.GroupSpec, phase1, phase2 []optimize.IterationRecord, duration time.Duration) error {
	if err := report.WriteIterations(filepath.Join(cfg.outputFolder, "iterations_phase1.csv"), phase1); err != nil {
		return err
	}
	if err := report.WriteIterations(filepath.Join(cfg.outputFolder, "iterations_phase2.csv"), phase2); err != nil {
		return err
	}
	if err := report.WriteEdges(filepath.Join(cfg.outputFolder, "edges.csv"), g, state); err != nil {
		return err
	}
	if err := report.WriteGroups(filepath.Join(cfg.outputFolder, "groups.csv"), groups, state, g); err != nil {
		return err
	}
	totalIterations := len(phase1) + len(phase2)
	return report.WriteRuntime(filepath.Join(cfg.outputFolder, "runtime.csv"), duration.Seconds(), totalIterations)
}
