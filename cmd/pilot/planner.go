package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/mars-rover/game/engine"
)

var (
	ErrNoRoute        = errors.New("no route to target")
	ErrTargetOccupied = errors.New("target cell is occupied")
	ErrGridTooLarge   = errors.New("grid too large to plan on")
)

// maxPlanCells bounds the cells of a grid Plan will search
const maxPlanCells = 1 << 20

// Target is where the rover should stop. An empty Direction accepts any heading.
type Target struct {
	X         int
	Y         int
	Direction engine.Direction
}

func (t Target) String() string {
	if t.Direction == "" {
		return fmt.Sprintf("%d %d", t.X, t.Y)
	}
	return fmt.Sprintf("%d %d %s", t.X, t.Y, t.Direction)
}

var headings = [...]engine.Direction{engine.North, engine.East, engine.South, engine.West}

func headingIndex(d engine.Direction) int {
	for i, h := range headings {
		if h == d {
			return i
		}
	}
	return -1
}

// state packs x, y and heading into one BFS node
type state struct {
	x, y, d int
}

// Plan returns the shortest L/R/M command string that drives a rover from
// start to target without leaving the grid or entering an occupied cell.
// Turns and moves cost the same.
func Plan(grid *engine.Grid, start engine.Placement, target Target) (string, error) {
	if !grid.InBounds(target.X, target.Y) {
		return "", fmt.Errorf("%w: target %s", engine.ErrOutOfBounds, target)
	}
	if target.Direction != "" && !target.Direction.Valid() {
		return "", fmt.Errorf("%w: %q", engine.ErrInvalidDirection, target.Direction)
	}
	if grid.IsOccupied(target.X, target.Y) {
		return "", fmt.Errorf("%w: %s", ErrTargetOccupied, target)
	}
	if !grid.InBounds(start.X, start.Y) {
		return "", fmt.Errorf("%w: start %s", engine.ErrOutOfBounds, start)
	}
	startDir := headingIndex(start.Direction)
	if startDir < 0 {
		return "", fmt.Errorf("%w: %q", engine.ErrInvalidDirection, start.Direction)
	}

	if grid.Width() >= maxPlanCells || grid.Height() >= maxPlanCells ||
		(grid.Width()+1) > maxPlanCells/(grid.Height()+1) {
		return "", fmt.Errorf("%w: %dx%d has more than %d cells", ErrGridTooLarge, grid.Width(), grid.Height(), maxPlanCells)
	}
	cols, rows := grid.Width()+1, grid.Height()+1
	index := func(s state) int {
		return ((s.y*cols)+s.x)*len(headings) + s.d
	}

	from := state{start.X, start.Y, startDir}
	isGoal := func(s state) bool {
		return s.x == target.X && s.y == target.Y &&
			(target.Direction == "" || headings[s.d] == target.Direction)
	}

	// prev[i] holds the predecessor index plus one and the operation taken
	size := cols * rows * len(headings)
	prev := make([]int, size)
	ops := make([]byte, size)
	prev[index(from)] = -1

	queue := []state{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if isGoal(cur) {
			return trace(prev, ops, index(cur)), nil
		}

		for _, next := range neighbours(grid, cur) {
			i := index(next.state)
			if prev[i] != 0 {
				continue
			}
			prev[i] = index(cur) + 1
			ops[i] = next.op
			queue = append(queue, next.state)
		}
	}

	return "", fmt.Errorf("%w: from %s to %s", ErrNoRoute, start, target)
}

type step struct {
	state state
	op    byte
}

func neighbours(grid *engine.Grid, s state) []step {
	n := len(headings)
	steps := []step{
		{state{s.x, s.y, (s.d + n - 1) % n}, engine.OpLeft},
		{state{s.x, s.y, (s.d + 1) % n}, engine.OpRight},
	}

	dx, dy := headings[s.d].Delta()
	nx, ny := s.x+dx, s.y+dy
	if grid.InBounds(nx, ny) && !grid.IsOccupied(nx, ny) {
		steps = append(steps, step{state{nx, ny, s.d}, engine.OpForward})
	}
	return steps
}

func trace(prev []int, ops []byte, i int) string {
	var reversed []byte
	for prev[i] > 0 {
		reversed = append(reversed, ops[i])
		i = prev[i] - 1
	}

	var b strings.Builder
	for j := len(reversed) - 1; j >= 0; j-- {
		b.WriteByte(reversed[j])
	}
	return b.String()
}

// gridFromSnapshot rebuilds a local grid from a session's occupancy log
func gridFromSnapshot(width, height int, occupied []engine.OccupiedCell) (*engine.Grid, error) {
	grid, err := engine.NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	for _, cell := range occupied {
		if err := grid.RecordOccupancy(cell.X, cell.Y, cell.Direction); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

// dryRun replays commands against grid without recording the result
func dryRun(grid *engine.Grid, start engine.Placement, commands string) (engine.Placement, error) {
	rover, err := engine.NewRover(start.X, start.Y, string(start.Direction), grid)
	if err != nil {
		return engine.Placement{}, err
	}
	if err := engine.ApplySequence(rover, commands); err != nil {
		return engine.Placement{}, err
	}
	return rover.Placement(), nil
}
