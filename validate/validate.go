// Command validate checks the game configuration JSON files in a directory.
// It checks:
//   - JSON structure, rejecting fields the game does not know
//   - The rules the server applies when loading a config (grid size, obstacle count, messages)
//   - That the file name matches the config name the server will list it under
//   - For configs pinned to a seed, that the fixed layout leaves the goal reachable
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
)

// Obstacle densities above this are reported as crowded
const crowdedDensity = 0.4

var errInvalidConfigs = errors.New("some configurations are invalid")

// ValidationResult captures the outcome of validating a single file.
// Errors holds the problems found; Info holds notes about a config that are
// not fatal.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var config engine.GameConfig
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	if want := strings.TrimSuffix(result.File, filepath.Ext(result.File)); config.Name != want {
		result.note("Listed as %q but named %q", want, config.Name)
	}

	result.note("✓ Grid %dx%d with %d obstacle draws", config.GridSize, config.GridSize, config.ObstacleCount)

	density := float64(config.ObstacleCount) / float64(config.GridSize*config.GridSize)
	if density > crowdedDensity {
		result.note("Crowded board: %.0f%% of cells drawn as obstacles", density*100)
	}

	if config.Messages.Moved == "" {
		result.note("messages.moved not set, the default is used")
	}
	if config.Messages.AlreadyOver == "" {
		result.note("messages.already_over not set, the default is used")
	}

	if config.Seed == 0 {
		result.note("✓ Random layout on every new game")
	} else {
		validateFixedLayout(&config, &result)
	}
	if config.RegenerateOnReset {
		result.note("✓ Obstacles redrawn on restart")
	}

	return result
}

// validateFixedLayout builds the layout a pinned seed produces and fails the
// config when that layout can never be won.
func validateFixedLayout(config *engine.GameConfig, result *ValidationResult) {
	state := engine.InitGameStateFromConfig(config, engine.NewRand(config.Seed))

	if state.IsObstacle(state.PlayerPos) {
		result.fail("Seed %d places an obstacle on the start cell", config.Seed)
		return
	}
	path := engine.ShortestSafePath(state)
	if path < 0 {
		result.fail("Seed %d leaves the goal unreachable", config.Seed)
		return
	}
	result.note("✓ Seed %d: %d distinct obstacles, shortest path %d moves",
		config.Seed, len(engine.DistinctObstacles(state.Obstacles)), path)
}

// validateDir validates every *.json file in dir and prints a report.
// It returns false if any file is invalid.
func validateDir(cmd *cli.Command, dir string) (bool, error) {
	w := cmd.Root().Writer

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, info := range result.Info {
			fmt.Fprintln(w, "  "+info)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate game configuration files",
		ArgsUsage: "[config-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := validateDir(cmd, dir)
			if err != nil {
				return err
			}
			if !ok {
				return errInvalidConfigs
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
