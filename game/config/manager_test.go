package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/game/service"
)

func createValidMission(name string) *engine.MissionConfig {
	return &engine.MissionConfig{
		Name:        name,
		Description: "Test mission",
		Width:       5,
		Height:      5,
		Rovers: []engine.RoverMission{
			{X: 1, Y: 2, Direction: "N", Commands: "LMLMLMLMM"},
		},
	}
}

func writeMissionFile(t *testing.T, dir, name string, mission *engine.MissionConfig) {
	t.Helper()
	data, err := json.MarshalIndent(mission, "", "  ")
	require.NoError(t, err)

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

const tomlMission = `name = "Toml Mission"
description = "Loaded from TOML"
width = 4
height = 3

[[rovers]]
x = 0
y = 0
direction = "E"
commands = "MMM"
`

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeMissionFile(t, dir, "classic", createValidMission("Classic From Disk"))

		manager, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Classic From Disk", manager.GetDefault().Name)
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		assert.Error(t, err)
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "missions.json")
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))
		_, err := NewManager(file)
		assert.Error(t, err)
	})

	t.Run("empty directory falls back to built-in mission", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, engine.DefaultMission(), manager.GetDefault())
	})

	t.Run("first listed mission when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeMissionFile(t, dir, "beta", createValidMission("Beta"))
		writeMissionFile(t, dir, "alpha", createValidMission("Alpha"))

		manager, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", manager.GetDefault().Name)
	})
}

func TestManager_LoadMission(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "easy", createValidMission("Easy"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ridge.toml"), []byte(tomlMission), 0644))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("load existing mission", func(t *testing.T) {
		mission, err := manager.LoadMission("easy")
		require.NoError(t, err)
		assert.Equal(t, "Easy", mission.Name)
	})

	t.Run("load with .json extension", func(t *testing.T) {
		mission, err := manager.LoadMission("easy.json")
		require.NoError(t, err)
		assert.Equal(t, "Easy", mission.Name)
	})

	t.Run("load toml mission", func(t *testing.T) {
		mission, err := manager.LoadMission("ridge")
		require.NoError(t, err)
		assert.Equal(t, "Toml Mission", mission.Name)
		assert.Equal(t, 4, mission.Width)
		require.Len(t, mission.Rovers, 1)
		assert.Equal(t, "MMM", mission.Rovers[0].Commands)
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadMission("easy")
		second, err := manager.LoadMission("easy")
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("load non-existent mission", func(t *testing.T) {
		_, err := manager.LoadMission("non-existent")
		assert.True(t, errors.Is(err, ErrMissionNotFound), "got %v", err)
		assert.ErrorIs(t, err, service.ErrMissionNotFound)
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		_, err := manager.LoadMission("../etc/passwd")
		assert.ErrorIs(t, err, ErrMissionNotFound)
	})

	t.Run("load invalid mission", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"name": ""}`), 0644))
		_, err := manager.LoadMission("invalid")
		assert.ErrorIs(t, err, ErrInvalidMission)
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"name": "Malformed", invalid json}`), 0644))
		_, err := manager.LoadMission("malformed")
		assert.ErrorIs(t, err, ErrInvalidMission)
	})

	t.Run("rover outside grid", func(t *testing.T) {
		bad := createValidMission("Bad")
		bad.Rovers[0].X = 9
		writeMissionFile(t, dir, "bad", bad)
		_, err := manager.LoadMission("bad")
		assert.ErrorIs(t, err, ErrInvalidMission)
	})
}

func TestManager_ListMissions(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "classic", createValidMission("Classic"))
	writeMissionFile(t, dir, "easy", createValidMission("Easy"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ridge.toml"), []byte(tomlMission), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	missions, err := manager.ListMissions()
	require.NoError(t, err)
	require.Len(t, missions, 3)

	assert.Equal(t, "classic", missions[0].MissionID)
	assert.Equal(t, "easy", missions[1].MissionID)
	assert.Equal(t, "ridge", missions[2].MissionID)
	assert.Equal(t, "ridge.toml", missions[2].Filename)
	assert.Equal(t, 4, missions[2].Width)
	assert.Equal(t, 3, missions[2].Height)
	assert.Equal(t, 1, missions[2].Rovers)
}

func TestManager_SaveMission(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	mission := createValidMission("Saved")
	require.NoError(t, manager.SaveMission("saved", mission))

	_, err = os.Stat(filepath.Join(dir, "saved.json"))
	require.NoError(t, err)

	// A fresh manager reads it back from disk
	other, err := NewManager(dir)
	require.NoError(t, err)
	loaded, err := other.LoadMission("saved")
	require.NoError(t, err)
	assert.Equal(t, mission, loaded)

	t.Run("invalid mission is not written", func(t *testing.T) {
		err := manager.SaveMission("empty", &engine.MissionConfig{})
		assert.ErrorIs(t, err, ErrInvalidMission)
		_, statErr := os.Stat(filepath.Join(dir, "empty.json"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("invalid name", func(t *testing.T) {
		assert.ErrorIs(t, manager.SaveMission("../escape", mission), ErrInvalidMission)
		assert.ErrorIs(t, manager.SaveMission("", mission), ErrInvalidMission)
	})
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "classic", createValidMission("Classic"))
	writeMissionFile(t, dir, "other", createValidMission("Other"))

	manager, err := NewManager(dir)
	require.NoError(t, err)
	require.NoError(t, manager.SetDefault("other"))
	assert.Equal(t, "Other", manager.GetDefault().Name)

	assert.Error(t, manager.SetDefault("missing"))

	// Changes on disk show up after a refresh
	writeMissionFile(t, dir, "classic", createValidMission("Classic v2"))
	cached, _ := manager.LoadMission("classic")
	assert.Equal(t, "Classic", cached.Name)

	manager.RefreshCache()
	assert.Equal(t, "Classic v2", manager.GetDefault().Name)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeMissionFile(t, dir, "classic", createValidMission("Classic"))
	writeMissionFile(t, dir, "easy", createValidMission("Easy"))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadMission("easy"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := manager.ListMissions(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
}
