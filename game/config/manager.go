package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/game/service"
)

var (
	ErrMissionNotFound = service.ErrMissionNotFound
	ErrInvalidMission  = errors.New("invalid mission")
)

// DefaultMissionName is loaded as the default mission when present
const DefaultMissionName = "classic"

// missionExtensions are tried in order when resolving a mission name
var missionExtensions = []string{".json", ".toml"}

// Manager handles mission file loading and caching
type Manager struct {
	missionDir     string
	defaultMission *engine.MissionConfig
	missions       map[string]*engine.MissionConfig
	mu             sync.RWMutex
}

// NewManager creates a new mission manager
func NewManager(missionDir string) (*Manager, error) {
	info, err := os.Stat(missionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mission directory does not exist: %s", missionDir)
		}
		return nil, fmt.Errorf("failed to stat mission directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mission path is not a directory: %s", missionDir)
	}

	m := &Manager{
		missionDir: missionDir,
		missions:   make(map[string]*engine.MissionConfig),
	}
	m.defaultMission = m.resolveDefault()

	return m, nil
}

// LoadMission loads a mission by name. The name may carry a .json or .toml
// extension; without one, .json is tried before .toml.
func (m *Manager) LoadMission(name string) (*engine.MissionConfig, error) {
	id := missionID(name)
	if id == "" || strings.ContainsAny(id, "/\\") || id == ".." {
		return nil, fmt.Errorf("%w: %q", ErrMissionNotFound, name)
	}

	m.mu.RLock()
	if mission, exists := m.missions[id]; exists {
		m.mu.RUnlock()
		return mission, nil
	}
	m.mu.RUnlock()

	path, err := m.resolvePath(name)
	if err != nil {
		return nil, err
	}

	mission, err := engine.LoadMissionConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissionNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidMission, err)
	}

	m.mu.Lock()
	m.missions[id] = mission
	m.mu.Unlock()

	return mission, nil
}

// ListMissions returns information about every valid mission file.
// Invalid files are skipped.
func (m *Manager) ListMissions() ([]*service.MissionInfo, error) {
	entries, err := os.ReadDir(m.missionDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mission directory: %w", err)
	}

	var missions []*service.MissionInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasMissionExtension(entry.Name()) {
			continue
		}

		id := missionID(entry.Name())
		if seen[id] {
			// a .json file shadows a .toml one with the same name
			continue
		}

		mission, err := m.LoadMission(entry.Name())
		if err != nil {
			log.Debug().Str("file", entry.Name()).Err(err).Msg("skipping invalid mission file")
			continue
		}
		seen[id] = true

		missions = append(missions, &service.MissionInfo{
			Filename:    entry.Name(),
			MissionID:   id,
			Name:        mission.Name,
			Description: mission.Description,
			Width:       mission.Width,
			Height:      mission.Height,
			Rovers:      len(mission.Rovers),
		})
	}

	sort.Slice(missions, func(i, j int) bool {
		return missions[i].MissionID < missions[j].MissionID
	})

	return missions, nil
}

// GetDefault returns the default mission
func (m *Manager) GetDefault() *engine.MissionConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMission
}

// SetDefault sets the default mission by name
func (m *Manager) SetDefault(name string) error {
	mission, err := m.LoadMission(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMission = mission
	return nil
}

// RefreshCache drops all cached missions and re-resolves the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.missions = make(map[string]*engine.MissionConfig)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultMission = def
	m.mu.Unlock()
}

// SaveMission validates a mission and writes it as JSON
func (m *Manager) SaveMission(name string, mission *engine.MissionConfig) error {
	id := missionID(name)
	if id == "" || strings.ContainsAny(id, "/\\") || id == ".." {
		return fmt.Errorf("%w: invalid mission name %q", ErrInvalidMission, name)
	}
	if err := engine.ValidateMissionConfig(mission); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMission, err)
	}

	data, err := json.MarshalIndent(mission, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	missionPath := filepath.Join(m.missionDir, id+".json")
	if err := os.WriteFile(missionPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write mission file: %w", err)
	}

	m.mu.Lock()
	m.missions[id] = mission
	m.mu.Unlock()

	log.Info().Str("mission", id).Str("path", missionPath).Msg("mission saved")
	return nil
}

// resolveDefault picks classic, then the first listed mission, then the
// built-in classic mission.
func (m *Manager) resolveDefault() *engine.MissionConfig {
	if mission, err := m.LoadMission(DefaultMissionName); err == nil {
		return mission
	}

	missions, err := m.ListMissions()
	if err == nil && len(missions) > 0 {
		if mission, err := m.LoadMission(missions[0].Filename); err == nil {
			return mission
		}
	}

	return engine.DefaultMission()
}

func (m *Manager) resolvePath(name string) (string, error) {
	if hasMissionExtension(name) {
		return filepath.Join(m.missionDir, name), nil
	}

	for _, ext := range missionExtensions {
		path := filepath.Join(m.missionDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissionNotFound, name)
}

func missionID(name string) string {
	if hasMissionExtension(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func hasMissionExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range missionExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
