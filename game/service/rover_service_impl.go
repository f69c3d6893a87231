package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/observability"
)

// roverServiceImpl implements the RoverService interface
type roverServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewRoverService creates a new rover service instance
func NewRoverService(sessions SessionManager, configs ConfigManager) RoverService {
	return &roverServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new session with an empty grid
func (s *roverServiceImpl) CreateSession(ctx context.Context, width, height int) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.createSession(width, height, "")
	if err != nil {
		return nil, err
	}
	return toSessionInfo(sess), nil
}

func (s *roverServiceImpl) createSession(width, height int, missionName string) (*Session, error) {
	grid, err := engine.NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", grid)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.MissionName = missionName

	observability.SetActiveSessions(s.sessions.Count())
	log.Info().
		Str("session", sess.ID).
		Int("width", width).
		Int("height", height).
		Str("mission", missionName).
		Msg("session created")

	return sess, nil
}

// GetSession retrieves session information. It touches the last access
// time, so it takes the write lock.
func (s *roverServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return toSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *roverServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, toSessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *roverServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	observability.SetActiveSessions(s.sessions.Count())
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// DeployRover places a new rover on the session's grid
func (s *roverServiceImpl) DeployRover(ctx context.Context, sessionID string, x, y int, direction string) (*RoverInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	entry, err := s.deployRover(sess, x, y, direction)
	if err != nil {
		return nil, err
	}

	info := toRoverInfo(sess.ID, entry)
	return &info, nil
}

func (s *roverServiceImpl) deployRover(sess *Session, x, y int, direction string) (*RoverEntry, error) {
	rover, err := engine.NewRover(x, y, direction, sess.Grid)
	if err != nil {
		log.Warn().
			Str("session", sess.ID).
			Int("x", x).
			Int("y", y).
			Str("direction", direction).
			Str("error_kind", engine.ErrorKind(err)).
			Err(err).
			Msg("rover rejected")
		return nil, err
	}

	entry := &RoverEntry{
		ID:         fmt.Sprintf("r%d", len(sess.Rovers)+1),
		Rover:      rover,
		DeployedAt: time.Now(),
	}
	sess.Rovers = append(sess.Rovers, entry)

	observability.RecordRoverDeployed()
	log.Info().
		Str("session", sess.ID).
		Str("rover", entry.ID).
		Str("position", rover.FormattedPosition()).
		Msg("rover deployed")

	return entry, nil
}

// GetRover returns a snapshot of one rover
func (s *roverServiceImpl) GetRover(ctx context.Context, sessionID, roverID string) (*RoverInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	entry := sess.FindRover(roverID)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoverNotFound, roverID)
	}

	info := toRoverInfo(sess.ID, entry)
	return &info, nil
}

// ExecuteCommands applies a command sequence to a rover and, when the whole
// sequence succeeds, records the rover's final position on the grid.
//
// Movement failures are not returned as errors: the rover has been rolled back
// and the result carries the error kind so the caller can retry.
func (s *roverServiceImpl) ExecuteCommands(ctx context.Context, sessionID, roverID, commands string) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	entry := sess.FindRover(roverID)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoverNotFound, roverID)
	}
	if entry.Finished {
		return nil, fmt.Errorf("%w: %s at %s", ErrRoverFinished, roverID, entry.Rover.FormattedPosition())
	}

	return s.executeCommands(sess, entry, commands), nil
}

func (s *roverServiceImpl) executeCommands(sess *Session, entry *RoverEntry, commands string) *CommandResult {
	commands = strings.ToUpper(strings.TrimSpace(commands))
	rover := entry.Rover
	entry.Attempts++

	result := &CommandResult{
		Commands: commands,
		Events:   []RoverEvent{},
	}

	err := engine.ApplySequence(rover, commands)
	if err != nil {
		kind := engine.ErrorKind(err)
		result.ErrorKind = kind
		result.Error = err.Error()

		var seqErr *engine.SequenceError
		if errors.As(err, &seqErr) {
			idx := seqErr.Index
			from := seqErr.From
			result.FailedAt = &idx
			result.FailedOperation = string(seqErr.Operation)
			result.FailedFrom = &from
			result.RolledBack = true
			result.Message = fmt.Sprintf("Operation %c at index %d failed (%s). Returned to initial position %s. Try again!",
				seqErr.Operation, seqErr.Index, kind, rover.Initial())
			result.Events = append(result.Events, RoverEvent{
				Type:      "rollback",
				Message:   err.Error(),
				Timestamp: time.Now(),
				Placement: rover.Placement(),
			})
		} else {
			result.Message = fmt.Sprintf("Commands rejected: %v", err)
			result.Events = append(result.Events, RoverEvent{
				Type:      "rejected",
				Message:   err.Error(),
				Timestamp: time.Now(),
				Placement: rover.Placement(),
			})
		}

		observability.RecordCommandSequence(kind, result.RolledBack)
		log.Warn().
			Str("session", sess.ID).
			Str("rover", entry.ID).
			Str("commands", commands).
			Str("error_kind", kind).
			Bool("rolled_back", result.RolledBack).
			Str("position", rover.FormattedPosition()).
			Msg("command sequence failed")

		result.Rover = toRoverInfo(sess.ID, entry)
		return result
	}

	result.Events = append(result.Events, RoverEvent{
		Type:      "sequence",
		Message:   fmt.Sprintf("Applied %d operations", len(commands)),
		Timestamp: time.Now(),
		Placement: rover.Placement(),
	})

	if err := sess.Grid.RecordOccupancy(rover.X(), rover.Y(), rover.Direction()); err != nil {
		// cannot happen for a rover that passed its own bounds checks
		result.ErrorKind = engine.ErrorKind(err)
		result.Error = err.Error()
		result.Message = fmt.Sprintf("Failed to record position: %v", err)
		result.Rover = toRoverInfo(sess.ID, entry)
		return result
	}
	entry.Finished = true

	result.Success = true
	result.Recorded = true
	result.Message = fmt.Sprintf("Rover %s reported position %s", entry.ID, rover.FormattedPosition())
	result.Events = append(result.Events, RoverEvent{
		Type:      "recorded",
		Message:   result.Message,
		Timestamp: time.Now(),
		Placement: rover.Placement(),
	})
	result.Rover = toRoverInfo(sess.ID, entry)

	observability.RecordCommandSequence("", false)
	log.Info().
		Str("session", sess.ID).
		Str("rover", entry.ID).
		Str("commands", commands).
		Str("position", rover.FormattedPosition()).
		Msg("command sequence applied")

	return result
}

// GetReport lists the session's occupied cells in recording order
func (s *roverServiceImpl) GetReport(ctx context.Context, sessionID string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return &Report{
		SessionID: sess.ID,
		Lines:     sess.Grid.Report(),
	}, nil
}

// RunMission creates a session from a mission file and drives each rover in
// order. Per-rover failures are part of the result, not errors.
func (s *roverServiceImpl) RunMission(ctx context.Context, missionName string) (*MissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mission, err := s.loadMission(missionName)
	if err != nil {
		return nil, err
	}

	sess, err := s.createSession(mission.Width, mission.Height, mission.Name)
	if err != nil {
		return nil, err
	}

	result := &MissionResult{
		Rovers: make([]MissionRoverResult, 0, len(mission.Rovers)),
	}

	for i, rm := range mission.Rovers {
		rr := MissionRoverResult{
			Index:    i,
			Commands: strings.ToUpper(rm.Commands),
		}

		entry, err := s.deployRover(sess, rm.X, rm.Y, rm.Direction)
		if err != nil {
			rr.ErrorKind = engine.ErrorKind(err)
			rr.Error = err.Error()
			result.Rovers = append(result.Rovers, rr)
			continue
		}
		rr.Deployed = true
		rr.RoverID = entry.ID

		cmd := s.executeCommands(sess, entry, rm.Commands)
		rr.Recorded = cmd.Recorded
		rr.ErrorKind = cmd.ErrorKind
		rr.Error = cmd.Error
		final := entry.Rover.Placement()
		rr.Final = &final

		result.Rovers = append(result.Rovers, rr)
	}

	result.Session = toSessionInfo(sess)
	result.Report = sess.Grid.Report()
	return result, nil
}

func (s *roverServiceImpl) loadMission(missionName string) (*engine.MissionConfig, error) {
	if missionName == "" {
		return s.configs.GetDefault(), nil
	}

	mission, err := s.configs.LoadMission(missionName)
	if err != nil {
		if errors.Is(err, ErrMissionNotFound) {
			available, listErr := s.configs.ListMissions()
			if listErr == nil && len(available) > 0 {
				var ids []string
				for _, m := range available {
					ids = append(ids, m.MissionID)
				}
				return nil, fmt.Errorf("mission '%s' not found. Available missions: %v: %w", missionName, ids, err)
			}
		}
		return nil, fmt.Errorf("failed to load mission %s: %w", missionName, err)
	}
	return mission, nil
}

// ListMissions returns all available mission files
func (s *roverServiceImpl) ListMissions(ctx context.Context) ([]*MissionInfo, error) {
	return s.configs.ListMissions()
}

// LoadMission loads a specific mission
func (s *roverServiceImpl) LoadMission(ctx context.Context, missionName string) (*engine.MissionConfig, error) {
	return s.configs.LoadMission(missionName)
}

// SaveMission saves a mission file
func (s *roverServiceImpl) SaveMission(ctx context.Context, missionName string, mission *engine.MissionConfig) error {
	return s.configs.SaveMission(missionName, mission)
}

func toSessionInfo(sess *Session) *SessionInfo {
	rovers := make([]RoverInfo, 0, len(sess.Rovers))
	for _, entry := range sess.Rovers {
		rovers = append(rovers, toRoverInfo(sess.ID, entry))
	}

	return &SessionInfo{
		ID:             sess.ID,
		MissionName:    sess.MissionName,
		Width:          sess.Grid.Width(),
		Height:         sess.Grid.Height(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Rovers:         rovers,
		Occupied:       sess.Grid.Occupied(),
	}
}

func toRoverInfo(sessionID string, entry *RoverEntry) RoverInfo {
	r := entry.Rover
	return RoverInfo{
		ID:        entry.ID,
		SessionID: sessionID,
		X:         r.X(),
		Y:         r.Y(),
		Direction: r.Direction(),
		Position:  r.FormattedPosition(),
		Initial:   r.Initial(),
		Finished:  entry.Finished,
		Attempts:  entry.Attempts,
	}
}
