// Command analyze prints quick, human-readable heuristics about the obstacle
// layouts a configuration produces. For each config it samples a range of seeds
// and reports duplicate draws, blocked start or goal cells and how often the
// goal is reachable on an obstacle-free path.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
)

// SeedReport describes the layout generated for one seed
type SeedReport struct {
	Seed         int64
	Obstacles    int
	Distinct     int
	StartBlocked bool
	GoalBlocked  bool
	PathLength   int // -1 when the goal cannot be reached
}

// Analysis summarises the layouts of one config across a seed range
type Analysis struct {
	Name          string
	GridSize      int
	ObstacleCount int
	Density       float64
	Reports       []SeedReport
}

// Solvable counts the seeds whose goal is reachable without touching an obstacle
func (a *Analysis) Solvable() int {
	n := 0
	for _, r := range a.Reports {
		if !r.StartBlocked && r.PathLength >= 0 {
			n++
		}
	}
	return n
}

func (a *Analysis) count(match func(SeedReport) bool) int {
	n := 0
	for _, r := range a.Reports {
		if match(r) {
			n++
		}
	}
	return n
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Report obstacle layout statistics for game configs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory of config JSON files"},
			&cli.Int64Flag{Name: "start-seed", Value: 1, Usage: "First seed to sample"},
			&cli.IntFlag{Name: "seeds", Value: 100, Usage: "Number of consecutive seeds to sample"},
		},
		ArgsUsage: "[config.json ...]",
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(c.String("config-dir"), "*.json"))
				if err != nil {
					return err
				}
				sort.Strings(files)
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found")
			}

			for _, file := range files {
				fmt.Fprintf(c.Root().Writer, "\n=== Analyzing %s ===\n", filepath.Base(file))
				config, err := engine.LoadGameConfig(file)
				if err != nil {
					fmt.Fprintf(c.Root().Writer, "Error loading config: %v\n", err)
					continue
				}
				analysis := analyzeConfig(config, c.Int64("start-seed"), c.Int("seeds"))
				printAnalysis(c.Root().Writer, analysis)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analyzeConfig samples count seeds starting at startSeed. A config pinned to a
// fixed seed is analysed for that seed only.
func analyzeConfig(config *engine.GameConfig, startSeed int64, count int) *Analysis {
	analysis := &Analysis{
		Name:          config.Name,
		GridSize:      config.GridSize,
		ObstacleCount: config.ObstacleCount,
		Density:       float64(config.ObstacleCount) / float64(config.GridSize*config.GridSize),
	}

	seeds := make([]int64, 0, count)
	if config.Seed != 0 {
		seeds = append(seeds, config.Seed)
	} else {
		for i := 0; i < count; i++ {
			seeds = append(seeds, startSeed+int64(i))
		}
	}

	for _, seed := range seeds {
		analysis.Reports = append(analysis.Reports, analyzeSeed(config, seed))
	}
	return analysis
}

func analyzeSeed(config *engine.GameConfig, seed int64) SeedReport {
	state := engine.InitGameStateFromConfig(config, engine.NewRand(seed))
	report := SeedReport{
		Seed:         seed,
		Obstacles:    len(state.Obstacles),
		Distinct:     len(engine.DistinctObstacles(state.Obstacles)),
		StartBlocked: state.IsObstacle(state.PlayerPos),
		GoalBlocked:  state.IsObstacle(state.GoalPos),
	}
	report.PathLength = engine.ShortestSafePath(state)
	return report
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.GridSize, a.GridSize)
	fmt.Fprintf(w, "Obstacle draws: %d (%.0f%% of cells)\n", a.ObstacleCount, a.Density*100)

	total := len(a.Reports)
	if total == 0 {
		fmt.Fprintln(w, "No seeds sampled")
		return
	}
	if total == 1 {
		fmt.Fprintf(w, "Fixed seed: %d\n", a.Reports[0].Seed)
	} else {
		fmt.Fprintf(w, "Seeds: %d..%d\n", a.Reports[0].Seed, a.Reports[total-1].Seed)
	}

	distinct := 0
	pathTotal, pathCount := 0, 0
	for _, r := range a.Reports {
		distinct += r.Distinct
		if r.PathLength >= 0 && !r.StartBlocked {
			pathTotal += r.PathLength
			pathCount++
		}
	}
	fmt.Fprintf(w, "Average distinct obstacles: %.1f\n", float64(distinct)/float64(total))

	withDuplicates := a.count(func(r SeedReport) bool { return r.Distinct < r.Obstacles })
	startBlocked := a.count(func(r SeedReport) bool { return r.StartBlocked })
	goalBlocked := a.count(func(r SeedReport) bool { return r.GoalBlocked })
	fmt.Fprintf(w, "Layouts with duplicate draws: %d/%d\n", withDuplicates, total)
	fmt.Fprintf(w, "Start cell blocked: %d/%d\n", startBlocked, total)
	fmt.Fprintf(w, "Goal cell blocked: %d/%d\n", goalBlocked, total)

	solvable := a.Solvable()
	if solvable == total {
		fmt.Fprintf(w, "✅ Goal reachable for every sampled seed\n")
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: goal unreachable for %d/%d seeds\n", total-solvable, total)
		shown := 0
		for _, r := range a.Reports {
			if r.StartBlocked || r.PathLength < 0 {
				if shown < 5 {
					fmt.Fprintf(w, "   Unsolvable seed: %d\n", r.Seed)
				}
				shown++
			}
		}
		if shown > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", shown-5)
		}
	}

	if pathCount > 0 {
		fmt.Fprintf(w, "Average shortest path: %.1f moves (minimum possible %d)\n",
			float64(pathTotal)/float64(pathCount), 2*(a.GridSize-1))
	}
}
