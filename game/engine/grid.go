package engine

import (
	"fmt"
	"sync"
)

// Grid is the bounded plateau rovers drive on. Width and Height are the
// largest valid x and y coordinates. The occupancy log is append-only.
type Grid struct {
	width    int
	height   int
	occupied []OccupiedCell
	mu       sync.RWMutex
}

// NewGrid creates an empty grid. Negative dimensions are rejected.
func NewGrid(width, height int) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d, both must be non-negative", ErrInvalidDimension, width, height)
	}
	return &Grid{
		width:    width,
		height:   height,
		occupied: []OccupiedCell{},
	}, nil
}

// Width returns the largest valid x coordinate
func (g *Grid) Width() int {
	return g.width
}

// Height returns the largest valid y coordinate
func (g *Grid) Height() int {
	return g.height
}

// InBounds checks if (x, y) lies on the grid
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x <= g.width && y >= 0 && y <= g.height
}

// RecordOccupancy appends a rover's reported placement to the log.
// Duplicate coordinates are accepted; collision checks belong to the rover.
func (g *Grid) RecordOccupancy(x, y int, d Direction) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfBounds, x, y, g.width, g.height)
	}
	if !d.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, string(d))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.occupied = append(g.occupied, OccupiedCell{X: x, Y: y, Direction: d})
	return nil
}

// IsOccupied reports whether any log entry sits on (x, y), ignoring direction
func (g *Grid) IsOccupied(x, y int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, cell := range g.occupied {
		if cell.X == x && cell.Y == y {
			return true
		}
	}
	return false
}

// Occupied returns a copy of the occupancy log in recording order
func (g *Grid) Occupied() []OccupiedCell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cells := make([]OccupiedCell, len(g.occupied))
	copy(cells, g.occupied)
	return cells
}

// Report formats every log entry as "x y D", in recording order
func (g *Grid) Report() []string {
	cells := g.Occupied()
	lines := make([]string, 0, len(cells))
	for _, cell := range cells {
		lines = append(lines, cell.String())
	}
	return lines
}
