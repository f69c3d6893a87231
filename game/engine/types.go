package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four compass points a rover can face
type Direction string

const (
	North Direction = "N"
	East  Direction = "E"
	South Direction = "S"
	West  Direction = "W"

	// Validation constants
	MaxGridSize      = 1000
	MaxMissionRovers = 100
)

// compass lists the directions in clockwise order
var compass = [...]Direction{North, East, South, West}

// ParseDirection converts a case-insensitive compass symbol to a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(s))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q, use N, E, S or W", ErrInvalidDirection, s)
	}
	return d, nil
}

// Valid reports whether d is one of N, E, S or W
func (d Direction) Valid() bool {
	return d.index() >= 0
}

// Right returns the direction one step clockwise
func (d Direction) Right() Direction {
	return compass[(d.index()+1)%len(compass)]
}

// Left returns the direction one step counter-clockwise
func (d Direction) Left() Direction {
	return compass[(d.index()+len(compass)-1)%len(compass)]
}

// Delta returns the unit step taken when moving forward in direction d
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

func (d Direction) index() int {
	for i, c := range compass {
		if c == d {
			return i
		}
	}
	return -1
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Placement is a position together with a facing direction
type Placement struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Direction Direction `json:"direction"`
}

// String formats the placement the way rovers report it: "x y D"
func (p Placement) String() string {
	return fmt.Sprintf("%d %d %s", p.X, p.Y, p.Direction)
}

// OccupiedCell is one entry of the grid's occupancy log
type OccupiedCell = Placement

// MissionConfig describes a grid and the rovers to drive on it, loaded from
// JSON or TOML mission files
type MissionConfig struct {
	Name        string         `json:"name" toml:"name"`
	Description string         `json:"description" toml:"description"`
	Width       int            `json:"width" toml:"width"`
	Height      int            `json:"height" toml:"height"`
	Rovers      []RoverMission `json:"rovers" toml:"rovers"`
}

// RoverMission is a rover's initial placement and the commands it runs
type RoverMission struct {
	X         int    `json:"x" toml:"x"`
	Y         int    `json:"y" toml:"y"`
	Direction string `json:"direction" toml:"direction"`
	Commands  string `json:"commands" toml:"commands"`
}
