package service

import (
	"time"

	"github.com/wricardo/mars-rover/game/engine"
)

// SessionInfo provides information about a session
type SessionInfo struct {
	ID             string                `json:"id"`
	MissionName    string                `json:"mission_name,omitempty"`
	Width          int                   `json:"width"`
	Height         int                   `json:"height"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	Rovers         []RoverInfo           `json:"rovers"`
	Occupied       []engine.OccupiedCell `json:"occupied"`
}

// RoverInfo is a snapshot of one rover
type RoverInfo struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	X         int              `json:"x"`
	Y         int              `json:"y"`
	Direction engine.Direction `json:"direction"`
	Position  string           `json:"position"` // "x y D"
	Initial   engine.Placement `json:"initial"`
	Finished  bool             `json:"finished"`
	Attempts  int              `json:"attempts"`
}

// CommandResult contains the result of applying a command sequence
type CommandResult struct {
	Success  bool      `json:"success"`
	Commands string    `json:"commands"`
	Rover    RoverInfo `json:"rover"`
	Message  string    `json:"message"`

	// Recorded is true when the final position was added to the grid log
	Recorded bool `json:"recorded"`

	// Failure diagnostics
	ErrorKind       string            `json:"error_kind,omitempty"` // out_of_bounds|position_occupied|invalid_operation
	Error           string            `json:"error,omitempty"`
	FailedAt        *int              `json:"failed_at,omitempty"` // zero-based index of the failing operation
	FailedOperation string            `json:"failed_operation,omitempty"`
	FailedFrom      *engine.Placement `json:"failed_from,omitempty"`
	RolledBack      bool              `json:"rolled_back"`

	Events []RoverEvent `json:"events,omitempty"`
}

// RoverEvent represents something that happened to a rover
type RoverEvent struct {
	Type      string           `json:"type"` // "deployed", "sequence", "rollback", "recorded", "rejected"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Placement engine.Placement `json:"placement"`
}

// Report lists a session's occupied cells in recording order
type Report struct {
	SessionID string   `json:"session_id"`
	Lines     []string `json:"lines"`
}

// MissionResult contains the outcome of running a mission file
type MissionResult struct {
	Session *SessionInfo         `json:"session"`
	Rovers  []MissionRoverResult `json:"rovers"`
	Report  []string             `json:"report"`
}

// MissionRoverResult is the outcome for one rover of a mission
type MissionRoverResult struct {
	Index     int               `json:"index"`
	RoverID   string            `json:"rover_id,omitempty"`
	Commands  string            `json:"commands"`
	Deployed  bool              `json:"deployed"`
	Recorded  bool              `json:"recorded"`
	Final     *engine.Placement `json:"final,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// MissionInfo provides information about a mission file
type MissionInfo struct {
	Filename    string `json:"filename"`
	MissionID   string `json:"mission_id"` // The identifier to use for RunMission
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Rovers      int    `json:"rovers"`
}
