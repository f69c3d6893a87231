package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mars-rover/game/engine"
)

var (
	ErrRoverNotFound = errors.New("rover not found")
	ErrRoverFinished = errors.New("rover already reported its final position")

	// ErrMissionNotFound is wrapped by ConfigManager implementations when no
	// mission file matches the requested name
	ErrMissionNotFound = errors.New("mission not found")
)

// RoverService defines all rover-related operations
type RoverService interface {
	// Session Management
	CreateSession(ctx context.Context, width, height int) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Rover Operations
	DeployRover(ctx context.Context, sessionID string, x, y int, direction string) (*RoverInfo, error)
	GetRover(ctx context.Context, sessionID, roverID string) (*RoverInfo, error)
	ExecuteCommands(ctx context.Context, sessionID, roverID, commands string) (*CommandResult, error)

	// Reporting
	GetReport(ctx context.Context, sessionID string) (*Report, error)

	// Missions
	RunMission(ctx context.Context, missionName string) (*MissionResult, error)
	ListMissions(ctx context.Context) ([]*MissionInfo, error)
	LoadMission(ctx context.Context, missionName string) (*engine.MissionConfig, error)
	SaveMission(ctx context.Context, missionName string, mission *engine.MissionConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, grid *engine.Grid) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// ConfigManager handles mission file loading
type ConfigManager interface {
	LoadMission(name string) (*engine.MissionConfig, error)
	ListMissions() ([]*MissionInfo, error)
	GetDefault() *engine.MissionConfig
	SaveMission(name string, mission *engine.MissionConfig) error
}

// Session represents one grid and the rovers deployed on it
type Session struct {
	ID             string
	Grid           *engine.Grid
	Rovers         []*RoverEntry
	MissionName    string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// RoverEntry tracks a deployed rover within a session
type RoverEntry struct {
	ID         string
	Rover      *engine.Rover
	Finished   bool
	Attempts   int
	DeployedAt time.Time
}

// FindRover returns the rover with the given id, or nil
func (s *Session) FindRover(roverID string) *RoverEntry {
	for _, entry := range s.Rovers {
		if entry.ID == roverID {
			return entry
		}
	}
	return nil
}
