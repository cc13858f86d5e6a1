package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/froggergame/game/engine"
)

func testConfig(gridSize, obstacles int, seed int64) *engine.GameConfig {
	return &engine.GameConfig{
		Name:          "test",
		Description:   "Test configuration",
		GridSize:      gridSize,
		ObstacleCount: obstacles,
		Seed:          seed,
	}
}

func TestAnalyzeConfig_SeedRange(t *testing.T) {
	analysis := analyzeConfig(testConfig(10, 10, 0), 5, 20)

	if len(analysis.Reports) != 20 {
		t.Fatalf("Expected 20 reports, got %d", len(analysis.Reports))
	}
	if analysis.Reports[0].Seed != 5 || analysis.Reports[19].Seed != 24 {
		t.Errorf("Unexpected seed range %d..%d", analysis.Reports[0].Seed, analysis.Reports[19].Seed)
	}
	if analysis.Density != 0.1 {
		t.Errorf("Expected density 0.1, got %f", analysis.Density)
	}
	for _, r := range analysis.Reports {
		if r.Obstacles != 10 {
			t.Errorf("Seed %d: expected 10 draws, got %d", r.Seed, r.Obstacles)
		}
		if r.Distinct > r.Obstacles || r.Distinct == 0 {
			t.Errorf("Seed %d: unexpected distinct count %d", r.Seed, r.Distinct)
		}
	}
}

func TestAnalyzeConfig_FixedSeed(t *testing.T) {
	analysis := analyzeConfig(testConfig(10, 10, 42), 1, 100)

	if len(analysis.Reports) != 1 {
		t.Fatalf("Expected a single report for a fixed seed, got %d", len(analysis.Reports))
	}
	if analysis.Reports[0].Seed != 42 {
		t.Errorf("Expected seed 42, got %d", analysis.Reports[0].Seed)
	}
}

func TestAnalyzeSeed_Deterministic(t *testing.T) {
	config := testConfig(10, 10, 0)
	a := analyzeSeed(config, 7)
	b := analyzeSeed(config, 7)
	if a != b {
		t.Errorf("Expected identical reports for the same seed, got %+v and %+v", a, b)
	}
}

func TestAnalyzeSeed_NoObstacles(t *testing.T) {
	report := analyzeSeed(testConfig(4, 0, 0), 1)

	if report.StartBlocked || report.GoalBlocked {
		t.Errorf("Empty board should not block anything: %+v", report)
	}
	if report.PathLength != 6 {
		t.Errorf("Expected path length 6, got %d", report.PathLength)
	}
}

func TestAnalyzeSeed_FullBoard(t *testing.T) {
	// Enough draws on a 2x2 grid to cover every cell for most seeds
	report := analyzeSeed(testConfig(2, 4, 0), 3)
	if report.Distinct < 1 || report.Distinct > 4 {
		t.Errorf("Unexpected distinct count %d", report.Distinct)
	}
	if report.GoalBlocked && report.PathLength != -1 {
		t.Errorf("Blocked goal should be unreachable, got path %d", report.PathLength)
	}
}

func TestPrintAnalysis(t *testing.T) {
	t.Run("all solvable", func(t *testing.T) {
		var out bytes.Buffer
		printAnalysis(&out, analyzeConfig(testConfig(5, 0, 0), 1, 3))

		for _, want := range []string{"Name: test", "Grid Size: 5 x 5", "Seeds: 1..3", "Goal reachable for every sampled seed", "Average shortest path: 8.0"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Expected %q in output:\n%s", want, out.String())
			}
		}
	})

	t.Run("unsolvable seeds", func(t *testing.T) {
		analysis := &Analysis{
			Name:          "blocked",
			GridSize:      3,
			ObstacleCount: 1,
			Reports: []SeedReport{
				{Seed: 1, Obstacles: 1, Distinct: 1, GoalBlocked: true, PathLength: -1},
				{Seed: 2, Obstacles: 1, Distinct: 1, PathLength: 4},
			},
		}

		var out bytes.Buffer
		printAnalysis(&out, analysis)

		for _, want := range []string{"goal unreachable for 1/2 seeds", "Unsolvable seed: 1", "Goal cell blocked: 1/2"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("Expected %q in output:\n%s", want, out.String())
			}
		}
		if analysis.Solvable() != 1 {
			t.Errorf("Expected 1 solvable seed, got %d", analysis.Solvable())
		}
	})

	t.Run("fixed seed", func(t *testing.T) {
		var out bytes.Buffer
		printAnalysis(&out, analyzeConfig(testConfig(5, 2, 99), 1, 10))
		if !strings.Contains(out.String(), "Fixed seed: 99") {
			t.Errorf("Expected fixed seed line, got:\n%s", out.String())
		}
	})
}
