// Command rover is the interactive console for driving rovers across a
// plateau, and a batch runner for mission files.
//
//	rover run [--width W --height H]
//	rover mission missions/classic.json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/observability"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "rover",
		Usage:     "drive Mars rovers across a rectangular plateau",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging on stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "interactive session: place rovers and send them operations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "largest x coordinate of the plateau"},
					&cli.IntFlag{Name: "height", Usage: "largest y coordinate of the plateau"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					initLogging(errOut, cmd.Bool("debug"))

					var grid *engine.Grid
					if cmd.IsSet("width") || cmd.IsSet("height") {
						if !cmd.IsSet("width") || !cmd.IsSet("height") {
							return errors.New("--width and --height must be given together")
						}
						var err error
						grid, err = engine.NewGrid(int(cmd.Int("width")), int(cmd.Int("height")))
						if err != nil {
							return err
						}
					}

					return newConsole(in, out).run(grid)
				},
			},
			{
				Name:      "mission",
				Usage:     "run a mission file and print the final positions",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					initLogging(errOut, cmd.Bool("debug"))

					if cmd.Args().Len() != 1 {
						return errors.New("expected exactly one mission file")
					}
					return runMissionFile(out, cmd.Args().First())
				},
			},
		},
	}
}

func initLogging(errOut io.Writer, debug bool) {
	observability.InitLoggerTo(errOut, "rover", debug)
}

// runMissionFile drives every rover of a mission and prints the report.
// Rovers that fail are listed before the report.
func runMissionFile(out io.Writer, path string) error {
	mission, err := engine.LoadMissionConfig(path)
	if err != nil {
		return err
	}

	outcome, err := engine.RunMission(mission)
	if err != nil {
		return err
	}

	for _, rover := range outcome.Rovers {
		if rover.Err != nil {
			fmt.Fprintf(out, "rover %d (%s): %v\n", rover.Index+1, rover.Commands, rover.Err)
		}
	}
	printReport(out, outcome.Grid.Report())
	return nil
}
