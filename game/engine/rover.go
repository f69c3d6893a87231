package engine

import "fmt"

// Rover is a positioned, directed vehicle bound to one Grid.
// A Rover is not safe for concurrent use; callers serialize access.
type Rover struct {
	x         int
	y         int
	direction Direction
	grid      *Grid
	initial   Placement
}

// NewRover places a rover on the grid. The direction is set first, then x
// and y, and finally the initial placement, which must not already be in the
// grid's occupancy log.
func NewRover(x, y int, direction string, grid *Grid) (*Rover, error) {
	if grid == nil {
		return nil, fmt.Errorf("rover needs a grid")
	}

	r := &Rover{grid: grid}
	if err := r.SetDirection(direction); err != nil {
		return nil, err
	}
	if err := r.SetX(x); err != nil {
		return nil, err
	}
	if err := r.SetY(y); err != nil {
		return nil, err
	}
	if err := r.setInitial(Placement{X: r.x, Y: r.y, Direction: r.direction}); err != nil {
		return nil, err
	}
	return r, nil
}

// SetDirection accepts N, E, S or W in any case and stores it upper-cased
func (r *Rover) SetDirection(direction string) error {
	d, err := ParseDirection(direction)
	if err != nil {
		return err
	}
	r.direction = d
	return nil
}

// SetX moves the rover to column x, rejecting values outside [0, width]
func (r *Rover) SetX(x int) error {
	if x < 0 || x > r.grid.Width() {
		return fmt.Errorf("%w: x=%d, must be between 0 and %d", ErrOutOfBounds, x, r.grid.Width())
	}
	r.x = x
	return nil
}

// SetY moves the rover to row y, rejecting values outside [0, height]
func (r *Rover) SetY(y int) error {
	if y < 0 || y > r.grid.Height() {
		return fmt.Errorf("%w: y=%d, must be between 0 and %d", ErrOutOfBounds, y, r.grid.Height())
	}
	r.y = y
	return nil
}

func (r *Rover) setInitial(p Placement) error {
	if r.grid.IsOccupied(p.X, p.Y) {
		return fmt.Errorf("%w: (%d,%d) is taken by another rover", ErrPositionOccupied, p.X, p.Y)
	}
	r.initial = p
	return nil
}

// X returns the current column
func (r *Rover) X() int {
	return r.x
}

// Y returns the current row
func (r *Rover) Y() int {
	return r.y
}

// Direction returns the direction the rover is facing
func (r *Rover) Direction() Direction {
	return r.direction
}

// Grid returns the grid the rover is bound to
func (r *Rover) Grid() *Grid {
	return r.grid
}

// Initial returns the placement captured at construction
func (r *Rover) Initial() Placement {
	return r.initial
}

// CurrentPosition returns the rover's coordinates
func (r *Rover) CurrentPosition() (int, int) {
	return r.x, r.y
}

// Position returns the rover's coordinates as a Position
func (r *Rover) Position() Position {
	return Position{X: r.x, Y: r.y}
}

// Placement returns the rover's coordinates and direction
func (r *Rover) Placement() Placement {
	return Placement{X: r.x, Y: r.y, Direction: r.direction}
}

// FormattedPosition returns "x y D", the format used in reports
func (r *Rover) FormattedPosition() string {
	return r.Placement().String()
}

// ReturnToStart restores x, y and then direction from the initial placement
func (r *Rover) ReturnToStart() error {
	if err := r.SetX(r.initial.X); err != nil {
		return err
	}
	if err := r.SetY(r.initial.Y); err != nil {
		return err
	}
	return r.SetDirection(string(r.initial.Direction))
}
