package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidateMissionConfig validates a mission configuration for correctness
func ValidateMissionConfig(config *MissionConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: mission is nil")
	}
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate grid size
	if config.Width < 0 || config.Height < 0 {
		return fmt.Errorf("config validation: %w: width and height must be non-negative, got %dx%d",
			ErrInvalidDimension, config.Width, config.Height)
	}
	if config.Width > MaxGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: %w: width and height must be at most %d, got %dx%d",
			ErrInvalidDimension, MaxGridSize, config.Width, config.Height)
	}

	if len(config.Rovers) > MaxMissionRovers {
		return fmt.Errorf("config validation: at most %d rovers per mission, got %d", MaxMissionRovers, len(config.Rovers))
	}

	for i, rover := range config.Rovers {
		if rover.X < 0 || rover.X > config.Width || rover.Y < 0 || rover.Y > config.Height {
			return fmt.Errorf("config validation: rover %d: %w: (%d,%d) outside %dx%d grid",
				i+1, ErrOutOfBounds, rover.X, rover.Y, config.Width, config.Height)
		}
		if _, err := ParseDirection(rover.Direction); err != nil {
			return fmt.Errorf("config validation: rover %d: %w", i+1, err)
		}
		if err := ValidateOperations(strings.ToUpper(rover.Commands)); err != nil {
			return fmt.Errorf("config validation: rover %d: %w", i+1, err)
		}
	}

	return nil
}

// LoadMissionConfig loads a mission from a .json or .toml file
func LoadMissionConfig(filename string) (*MissionConfig, error) {
	var config MissionConfig

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if _, err := toml.DecodeFile(filename, &config); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to parse mission file '%s': %w", filename, err)
		}
	case ".json":
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse mission file '%s': %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("unsupported mission file extension: %s", filename)
	}

	if err := ValidateMissionConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultMission returns the classic two-rover mission on a 5x5 grid
func DefaultMission() *MissionConfig {
	return &MissionConfig{
		Name:        "classic",
		Description: "Two rovers on a 5x5 plateau",
		Width:       5,
		Height:      5,
		Rovers: []RoverMission{
			{X: 1, Y: 2, Direction: "N", Commands: "LMLMLMLMM"},
			{X: 3, Y: 3, Direction: "E", Commands: "MMRMMRMRRM"},
		},
	}
}

// RoverOutcome is the result of driving one rover of a mission
type RoverOutcome struct {
	Index    int       `json:"index"`
	Initial  Placement `json:"initial"`
	Final    Placement `json:"final"`
	Commands string    `json:"commands"`
	Deployed bool      `json:"deployed"`
	Recorded bool      `json:"recorded"`
	Err      error     `json:"-"`
}

// MissionOutcome collects the results of a mission run
type MissionOutcome struct {
	Grid   *Grid
	Rovers []RoverOutcome
}

// RunMission builds the mission's grid and drives each rover in order. A
// rover whose sequence succeeds has its final placement recorded; a rover that
// cannot be placed or whose sequence fails is reported and skipped.
func RunMission(config *MissionConfig) (*MissionOutcome, error) {
	if err := ValidateMissionConfig(config); err != nil {
		return nil, err
	}

	grid, err := NewGrid(config.Width, config.Height)
	if err != nil {
		return nil, err
	}

	outcome := &MissionOutcome{
		Grid:   grid,
		Rovers: make([]RoverOutcome, 0, len(config.Rovers)),
	}

	for i, rm := range config.Rovers {
		commands := strings.ToUpper(rm.Commands)
		result := RoverOutcome{Index: i, Commands: commands}

		rover, err := NewRover(rm.X, rm.Y, rm.Direction, grid)
		if err != nil {
			result.Err = err
			outcome.Rovers = append(outcome.Rovers, result)
			continue
		}
		result.Deployed = true
		result.Initial = rover.Initial()

		if err := ApplySequence(rover, commands); err != nil {
			result.Err = err
		} else if err := grid.RecordOccupancy(rover.X(), rover.Y(), rover.Direction()); err != nil {
			result.Err = err
		} else {
			result.Recorded = true
		}
		result.Final = rover.Placement()

		outcome.Rovers = append(outcome.Rovers, result)
	}

	return outcome, nil
}
