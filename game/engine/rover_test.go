package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T) *Grid {
	t.Helper()
	grid, err := NewGrid(5, 5)
	require.NoError(t, err)
	return grid
}

func TestNewRover_EveryCellOnEmptyGrid(t *testing.T) {
	for x := 0; x <= 5; x++ {
		for y := 0; y <= 5; y++ {
			rover, err := NewRover(x, y, "N", newTestGrid(t))
			require.NoError(t, err, "(%d,%d)", x, y)

			gotX, gotY := rover.CurrentPosition()
			assert.Equal(t, x, gotX)
			assert.Equal(t, y, gotY)
		}
	}
}

func TestNewRover_OutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 0},
		{"negative y", 0, -1},
		{"x past width", 6, 0},
		{"y past height", 0, 6},
		{"far corner", 6, 6},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rover, err := NewRover(test.x, test.y, "E", newTestGrid(t))
			assert.ErrorIs(t, err, ErrOutOfBounds)
			assert.Nil(t, rover)
		})
	}
}

func TestNewRover_Direction(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"N", North, false},
		{"e", East, false},
		{"s", South, false},
		{"W", West, false},
		{"X", "", true},
		{"", "", true},
		{"NE", "", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			rover, err := NewRover(2, 2, test.input, newTestGrid(t))
			if test.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDirection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, rover.Direction())
		})
	}
}

func TestNewRover_PositionOccupied(t *testing.T) {
	grid := newTestGrid(t)
	require.NoError(t, grid.RecordOccupancy(1, 3, North))

	_, err := NewRover(1, 3, "E", grid)
	assert.ErrorIs(t, err, ErrPositionOccupied)

	// an unrecorded rover does not block construction
	_, err = NewRover(2, 2, "N", grid)
	require.NoError(t, err)
	_, err = NewRover(2, 2, "S", grid)
	assert.NoError(t, err)
}

func TestNewRover_NilGrid(t *testing.T) {
	_, err := NewRover(0, 0, "N", nil)
	assert.Error(t, err)
}

func TestRover_Setters(t *testing.T) {
	rover, err := NewRover(2, 2, "N", newTestGrid(t))
	require.NoError(t, err)

	assert.ErrorIs(t, rover.SetX(6), ErrOutOfBounds)
	assert.ErrorIs(t, rover.SetY(-1), ErrOutOfBounds)
	assert.ErrorIs(t, rover.SetDirection("up"), ErrInvalidDirection)
	assert.Equal(t, "2 2 N", rover.FormattedPosition(), "failed setters must not mutate")

	require.NoError(t, rover.SetX(5))
	require.NoError(t, rover.SetY(0))
	require.NoError(t, rover.SetDirection("w"))
	assert.Equal(t, "5 0 W", rover.FormattedPosition())
}

func TestRover_InitialIsImmutable(t *testing.T) {
	rover, err := NewRover(1, 2, "n", newTestGrid(t))
	require.NoError(t, err)

	require.NoError(t, rover.SetX(4))
	rover.TurnRight()

	assert.Equal(t, Placement{X: 1, Y: 2, Direction: North}, rover.Initial())
}

func TestRover_ReturnToStart(t *testing.T) {
	rover, err := NewRover(1, 2, "N", newTestGrid(t))
	require.NoError(t, err)

	require.NoError(t, rover.SetX(3))
	require.NoError(t, rover.SetY(4))
	rover.TurnLeft()

	require.NoError(t, rover.ReturnToStart())
	assert.Equal(t, "1 2 N", rover.FormattedPosition())
	assert.Equal(t, Position{X: 1, Y: 2}, rover.Position())
}

func TestRover_FormattedPosition(t *testing.T) {
	rover, err := NewRover(3, 4, "n", newTestGrid(t))
	require.NoError(t, err)
	assert.Equal(t, "3 4 N", rover.FormattedPosition())
	assert.Same(t, rover.Grid(), rover.Grid())
}
