// Package config loads mission files for the Mars Rover simulation.
//
// A mission describes one plateau and the rovers to drive across it:
//
//	{
//	  "name": "classic",
//	  "description": "Two rovers on a 5x5 plateau",
//	  "width": 5,
//	  "height": 5,
//	  "rovers": [
//	    {"x": 1, "y": 2, "direction": "N", "commands": "LMLMLMLMM"},
//	    {"x": 3, "y": 3, "direction": "E", "commands": "MMRMMRMRRM"}
//	  ]
//	}
//
// Missions live in a directory as .json or .toml files. A mission name without
// an extension resolves to name.json first, then name.toml. Loaded missions are
// cached until RefreshCache is called. New missions are always saved as JSON.
//
// The default mission is "classic" when present, otherwise the first mission
// in the directory, otherwise the built-in classic mission.
//
// Usage:
//
//	manager, err := config.NewManager("missions")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mission, err := manager.LoadMission("ridge")
//	missions, err := manager.ListMissions()
package config
