// Package service provides the business logic layer for the Mars Rover simulation.
//
// The service package implements:
//   - Multi-session grid management
//   - Rover deployment and command execution
//   - Occupancy recording after successful command sequences
//   - Mission loading and batch runs
//   - Position reports in recording order
//
// Core Interfaces:
//
// RoverService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and saves mission files.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Each session owns one Grid and the rovers deployed on it. The
// service plays the caller role of the command-sequence protocol: it applies a
// rover's commands, and only when the whole sequence succeeds does it record
// the rover's final placement on the grid.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("missions")
//	roverService := service.NewRoverService(sessionMgr, configMgr)
//
//	info, err := roverService.CreateSession(ctx, 5, 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rover, err := roverService.DeployRover(ctx, info.ID, 1, 2, "N")
//	result, err := roverService.ExecuteCommands(ctx, info.ID, rover.ID, "LMLMLMLMM")
//	if !result.Success {
//		// rover was rolled back; retry with other commands
//	}
//
// Concurrency:
//
// All mutations are serialized by the service. A rover is only ever touched
// while the service lock is held, and a Grid's occupancy log is appended under
// its own lock.
package service
