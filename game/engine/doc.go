// Package engine provides the core rules of the Mars Rover simulation.
//
// The engine package implements:
//   - A bounded rectangular Grid with an append-only occupancy log
//   - Rovers with validated position and facing direction
//   - Turning over the four-point compass and forward movement
//   - Collision detection against previously recorded rovers
//   - The command-sequence protocol with rollback on failure
//   - Mission configuration validation and dry runs
//
// Core Types:
//
// Grid holds the playable rectangle. Its width and height are the maximum
// valid x and y coordinates (inclusive). Every rover that finishes a command
// sequence is appended to the grid's occupancy log, and the log never shrinks.
//
// Rover is bound to exactly one Grid. Every field mutation goes through a
// validating setter, so a Rover can never hold an out-of-bounds position or an
// unknown direction. The placement captured at construction is kept for
// rollback.
//
// Usage:
//
//	grid, err := engine.NewGrid(5, 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rover, err := engine.NewRover(1, 2, "N", grid)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := engine.ApplySequence(rover, "LMLMLMLMM"); err != nil {
//		// rover is already back at its initial placement
//		log.Printf("sequence failed: %v", err)
//	}
//	grid.RecordOccupancy(rover.X(), rover.Y(), rover.Direction())
//	fmt.Println(rover.FormattedPosition()) // "1 3 N"
//
// Failure Semantics:
//
// Validation happens at the point of mutation. A failed forward move returns
// the rover to its initial placement before the error is returned, and
// ApplySequence stops at the first failing operation. Command strings are
// checked as a whole before any operation is applied, so an invalid character
// never leaves a rover partially moved.
package engine
