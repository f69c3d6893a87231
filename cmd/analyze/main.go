// Command analyze validates the mission files in a directory and dry-runs
// each one, printing the per-rover outcome and the final position report.
// It exits non-zero when any file is invalid.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mars-rover/game/engine"
)

// AnalysisResult summarizes one mission file.
type AnalysisResult struct {
	File     string
	Valid    bool
	Error    string
	Rovers   int
	Recorded int
	Failed   int
	Report   []string
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "validate and dry-run rover mission files",
		ArgsUsage: "[file ...]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "missions",
				Usage:   "directory to scan when no files are given",
				Sources: cli.EnvVars("MISSIONS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = missionFiles(cmd.String("dir"))
				if err != nil {
					return err
				}
			}
			if len(files) == 0 {
				fmt.Fprintf(out, "No mission files found\n")
				return nil
			}

			invalid := 0
			for _, file := range files {
				if !analyzeMission(out, file).Valid {
					invalid++
				}
			}

			fmt.Fprintf(out, "\n%d mission(s) analyzed, %d invalid\n", len(files), invalid)
			if invalid > 0 {
				return fmt.Errorf("%d invalid mission file(s)", invalid)
			}
			return nil
		},
	}
}

// missionFiles lists the .json and .toml files in dir, sorted by name.
func missionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".toml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeMission(out io.Writer, path string) AnalysisResult {
	result := AnalysisResult{File: filepath.Base(path)}
	fmt.Fprintf(out, "\n=== Analyzing %s ===\n", result.File)

	mission, err := engine.LoadMissionConfig(path)
	if err != nil {
		result.Error = err.Error()
		fmt.Fprintf(out, "❌ Invalid: %v\n", err)
		return result
	}
	result.Valid = true
	result.Rovers = len(mission.Rovers)

	fmt.Fprintf(out, "Name: %s\n", mission.Name)
	if mission.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", mission.Description)
	}
	fmt.Fprintf(out, "Plateau: %d x %d\n", mission.Width, mission.Height)
	fmt.Fprintf(out, "Rovers: %d\n", len(mission.Rovers))

	outcome, err := engine.RunMission(mission)
	if err != nil {
		result.Valid = false
		result.Error = err.Error()
		fmt.Fprintf(out, "❌ Dry run failed: %v\n", err)
		return result
	}

	for _, rover := range outcome.Rovers {
		start := mission.Rovers[rover.Index]
		label := fmt.Sprintf("   Rover %d (%d %d %s, %q)", rover.Index+1, start.X, start.Y,
			strings.ToUpper(start.Direction), rover.Commands)

		switch {
		case rover.Recorded:
			result.Recorded++
			fmt.Fprintf(out, "%s -> %s\n", label, rover.Final)
		case !rover.Deployed:
			result.Failed++
			fmt.Fprintf(out, "%s -> not deployed: %v\n", label, rover.Err)
		default:
			result.Failed++
			fmt.Fprintf(out, "%s -> rolled back to %s: %v\n", label, rover.Final, rover.Err)
			var seqErr *engine.SequenceError
			if errors.As(rover.Err, &seqErr) {
				fmt.Fprintf(out, "      failing operation: %c at index %d from %s\n",
					seqErr.Operation, seqErr.Index, seqErr.From)
			}
		}
	}

	result.Report = outcome.Grid.Report()

	if result.Failed > 0 {
		fmt.Fprintf(out, "⚠️  WARNING: %d of %d rovers did not report a position\n", result.Failed, result.Rovers)
	} else {
		fmt.Fprintf(out, "✅ All rovers reported a position\n")
	}

	fmt.Fprintf(out, "Report:\n")
	for _, line := range result.Report {
		fmt.Fprintf(out, "   %s\n", line)
	}

	return result
}
