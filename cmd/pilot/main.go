// Command pilot lands a rover on a running rover server and drives it to a
// target cell along the shortest route that avoids reported rovers.
//
//	pilot --start "1 2 N" --target "4 4 E"
//	pilot --url http://mars:8080 --session 3f9a01bc --start "0 0 N" --target "2 3"
//
// Without --session a new plateau of --width x --height is created.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/observability"
)

func main() {
	if err := newCommand(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(out, errOut io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "pilot",
		Usage:     "drive a rover to a target cell on a rover server",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "http://localhost:8080",
				Usage:   "rover server URL",
				Sources: cli.EnvVars("MARS_ROVER_URL"),
			},
			&cli.StringFlag{Name: "session", Usage: "existing session ID (default: create one)"},
			&cli.IntFlag{Name: "width", Value: 5, Usage: "plateau width for a new session"},
			&cli.IntFlag{Name: "height", Value: 5, Usage: "plateau height for a new session"},
			&cli.StringFlag{Name: "start", Required: true, Usage: `landing placement, "x y D"`},
			&cli.StringFlag{Name: "target", Required: true, Usage: `target cell "x y" or placement "x y D"`},
			&cli.IntFlag{Name: "max-attempts", Value: 3, Usage: "replans after the route was blocked"},
			&cli.BoolFlag{Name: "dry-run", Usage: "plan against the current session without deploying"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging on stderr"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			observability.InitLoggerTo(errOut, "pilot", cmd.Bool("debug"))

			start, err := parsePlacement(cmd.String("start"))
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			target, err := parseTarget(cmd.String("target"))
			if err != nil {
				return fmt.Errorf("--target: %w", err)
			}

			client := NewClient(cmd.String("url"))
			if id := cmd.String("session"); id != "" {
				client.UseSession(id)
			} else {
				if _, err := client.CreateSession(int(cmd.Int("width")), int(cmd.Int("height"))); err != nil {
					return err
				}
				log.Info().Str("session", client.SessionID()).Msg("Session created")
			}

			p := &pilot{
				client:      client,
				out:         out,
				maxAttempts: int(cmd.Int("max-attempts")),
			}
			if cmd.Bool("dry-run") {
				return p.plan(start, target)
			}
			return p.fly(start, target)
		},
	}
}

type pilot struct {
	client      *Client
	out         io.Writer
	maxAttempts int
}

// plan prints the route against the session's current obstacles
func (p *pilot) plan(start engine.Placement, target Target) error {
	commands, final, err := p.route(start, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "route %q from %s ends at %s\n", commands, start, final)
	return nil
}

// route plans on a fresh snapshot and checks the plan locally
func (p *pilot) route(start engine.Placement, target Target) (string, engine.Placement, error) {
	session, err := p.client.GetSession()
	if err != nil {
		return "", engine.Placement{}, err
	}
	grid, err := gridFromSnapshot(session.Width, session.Height, session.Occupied)
	if err != nil {
		return "", engine.Placement{}, err
	}

	commands, err := Plan(grid, start, target)
	if err != nil {
		return "", engine.Placement{}, err
	}
	final, err := dryRun(grid, start, commands)
	if err != nil {
		return "", engine.Placement{}, fmt.Errorf("planned route %q does not replay: %w", commands, err)
	}
	return commands, final, nil
}

// fly deploys the rover, then sends planned routes until one reports. A
// rollback caused by a rover that reported after planning triggers a replan.
func (p *pilot) fly(start engine.Placement, target Target) error {
	if _, _, err := p.route(start, target); err != nil {
		return err
	}

	rover, err := p.client.DeployRover(start)
	if err != nil {
		return err
	}
	log.Info().Str("rover", rover.ID).Str("at", rover.Position).Msg("Rover deployed")

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		commands, _, err := p.route(start, target)
		if err != nil {
			return err
		}

		result, err := p.client.ExecuteCommands(rover.ID, commands)
		if err != nil {
			return err
		}

		if result.Success {
			fmt.Fprintf(p.out, "session %s rover %s: %q -> %s\n", p.client.SessionID(), rover.ID, commands, result.Rover.Position)
			return nil
		}

		log.Warn().
			Int("attempt", attempt).
			Str("kind", result.ErrorKind).
			Str("error", result.Error).
			Msg("Route failed, rover rolled back")

		if result.ErrorKind != engine.KindPositionOccupied {
			return fmt.Errorf("route %q failed: %s", commands, result.Error)
		}
	}

	return fmt.Errorf("rover %s did not reach %s after %d attempts", rover.ID, target, p.maxAttempts)
}

// parsePlacement reads "x y D"
func parsePlacement(s string) (engine.Placement, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return engine.Placement{}, errors.New(`expected "x y D"`)
	}
	x, y, err := parseXY(fields[0], fields[1])
	if err != nil {
		return engine.Placement{}, err
	}
	d, err := engine.ParseDirection(fields[2])
	if err != nil {
		return engine.Placement{}, err
	}
	return engine.Placement{X: x, Y: y, Direction: d}, nil
}

// parseTarget reads "x y" or "x y D"
func parseTarget(s string) (Target, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 && len(fields) != 3 {
		return Target{}, errors.New(`expected "x y" or "x y D"`)
	}
	x, y, err := parseXY(fields[0], fields[1])
	if err != nil {
		return Target{}, err
	}
	t := Target{X: x, Y: y}
	if len(fields) == 3 {
		if t.Direction, err = engine.ParseDirection(fields[2]); err != nil {
			return Target{}, err
		}
	}
	return t, nil
}

func parseXY(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("y: %w", err)
	}
	return x, y, nil
}
