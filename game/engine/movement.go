package engine

import "fmt"

// TurnRight rotates the rover one step clockwise (W wraps to N)
func (r *Rover) TurnRight() {
	r.direction = r.direction.Right()
}

// TurnLeft rotates the rover one step counter-clockwise (N wraps to W)
func (r *Rover) TurnLeft() {
	r.direction = r.direction.Left()
}

// MoveForward advances the rover one cell in the direction it is facing.
//
// The destination goes through the bounds-checked setter first, so a move off
// the grid fails with ErrOutOfBounds before any collision check. A destination
// already in the occupancy log fails with ErrPositionOccupied. In both cases
// the rover is returned to its initial placement before the error is returned.
func (r *Rover) MoveForward() error {
	dx, dy := r.direction.Delta()

	var err error
	if dx != 0 {
		err = r.SetX(r.x + dx)
	} else {
		err = r.SetY(r.y + dy)
	}
	if err == nil && r.grid.IsOccupied(r.x, r.y) {
		err = fmt.Errorf("%w: hit a rover at (%d,%d)", ErrPositionOccupied, r.x, r.y)
	}
	if err == nil {
		return nil
	}

	if rbErr := r.ReturnToStart(); rbErr != nil {
		return fmt.Errorf("rollback to (%s) failed: %v: %w", r.initial, rbErr, err)
	}
	return err
}

// CanMoveForward reports whether MoveForward would succeed without moving
func (r *Rover) CanMoveForward() bool {
	dx, dy := r.direction.Delta()
	x, y := r.x+dx, r.y+dy
	return r.grid.InBounds(x, y) && !r.grid.IsOccupied(x, y)
}
