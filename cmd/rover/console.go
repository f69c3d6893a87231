package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/mars-rover/game/engine"
)

// errExit ends the session. Any input containing "exit" raises it, as does
// running out of input.
var errExit = errors.New("exit requested")

const (
	reportHeader = "--------------- Output ---------------"
	reportFooter = "--------------------------------------"
)

// console drives rovers one at a time from line-oriented input. A rover
// whose sequence fails is rolled back and asked for new operations until a
// sequence succeeds; its final position is then recorded on the grid.
type console struct {
	in   *bufio.Scanner
	out  io.Writer
	grid *engine.Grid
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// run plays the whole session. A nil grid is asked for first.
func (c *console) run(grid *engine.Grid) error {
	c.grid = grid

	err := c.loop()
	if errors.Is(err, errExit) {
		c.printReport()
		return nil
	}
	return err
}

func (c *console) loop() error {
	if c.grid == nil {
		grid, err := c.askGrid()
		if err != nil {
			return err
		}
		c.grid = grid
	}

	for {
		rover, err := c.askRover()
		if err != nil {
			return err
		}
		if err := c.driveRover(rover); err != nil {
			return err
		}
	}
}

// prompt prints msg and reads one line
func (c *console) prompt(msg string) (string, error) {
	fmt.Fprintf(c.out, "%s\n>>> ", msg)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		fmt.Fprintln(c.out)
		return "", errExit
	}

	line := c.in.Text()
	if strings.Contains(strings.ToUpper(line), "EXIT") {
		return "", errExit
	}
	return strings.TrimSpace(line), nil
}

func (c *console) askGrid() (*engine.Grid, error) {
	for {
		line, err := c.prompt("Please enter the size of mars (2 numbers, separated by a space and higher than 0).")
		if err != nil {
			return nil, err
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "Incorrect input. Please ensure you enter a string with two numerical elements")
			continue
		}
		width, height, ok := c.parseCoordinates(fields[0], fields[1])
		if !ok {
			continue
		}

		grid, err := engine.NewGrid(width, height)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\nTry again!\n", err)
			continue
		}
		log.Debug().Int("width", width).Int("height", height).Msg("grid created")
		return grid, nil
	}
}

func (c *console) askRover() (*engine.Rover, error) {
	for {
		line, err := c.prompt("Please enter the current rover's initial position.\nRemember to keep inside Mars limits!")
		if err != nil {
			return nil, err
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			fmt.Fprintln(c.out, "Please enter two numbers (coordinates) followed by a Letter(direction) either N, E, S or W\nTry again!")
			continue
		}
		x, y, ok := c.parseCoordinates(fields[0], fields[1])
		if !ok {
			continue
		}

		rover, err := engine.NewRover(x, y, fields[2], c.grid)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\nTry again!\n", err)
			continue
		}
		log.Debug().Str("position", rover.FormattedPosition()).Msg("rover placed")
		return rover, nil
	}
}

// driveRover asks for operations until a sequence succeeds, then records the
// rover's final position.
func (c *console) driveRover(rover *engine.Rover) error {
	for {
		line, err := c.prompt("Enter a sequence of operations.")
		if err != nil {
			return err
		}
		ops := strings.ToUpper(line)

		err = engine.ApplySequence(rover, ops)
		var seqErr *engine.SequenceError
		switch {
		case errors.As(err, &seqErr):
			initial := rover.Initial()
			fmt.Fprintf(c.out, "Error: %v\nReturning it to initial position (%d, %d facing %s). Try again!\n",
				seqErr.Err, initial.X, initial.Y, initial.Direction)
			log.Debug().Int("index", seqErr.Index).Str("error_kind", engine.ErrorKind(err)).Msg("sequence rolled back")
			continue
		case err != nil:
			fmt.Fprintf(c.out, "Only values 'L', 'M' or 'R' accepted! (%v)\n", err)
			continue
		}

		if err := c.grid.RecordOccupancy(rover.X(), rover.Y(), rover.Direction()); err != nil {
			return fmt.Errorf("failed to record rover position: %w", err)
		}
		fmt.Fprintf(c.out, "rover position %s\n", rover.FormattedPosition())
		return nil
	}
}

// parseCoordinates parses two non-negative integers, printing a hint on failure
func (c *console) parseCoordinates(a, b string) (int, int, bool) {
	x, errX := strconv.Atoi(a)
	y, errY := strconv.Atoi(b)
	if errX != nil || errY != nil {
		fmt.Fprintln(c.out, "Only numerical elements. Try again!")
		return 0, 0, false
	}
	if x < 0 || y < 0 {
		fmt.Fprintln(c.out, "Numbers must not be negative. Try again!")
		return 0, 0, false
	}
	return x, y, true
}

func (c *console) printReport() {
	var lines []string
	if c.grid != nil {
		lines = c.grid.Report()
	}
	printReport(c.out, lines)
	fmt.Fprintln(c.out, "Exiting application.")
}

func printReport(out io.Writer, lines []string) {
	fmt.Fprintln(out, reportHeader)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, reportFooter)
}
