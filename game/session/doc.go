// Package session provides in-memory session storage for the Mars Rover simulation.
//
// A session owns one grid and the rovers deployed on it. The Manager stores
// sessions keyed by a case-insensitive ID, generates IDs when none is given,
// and removes sessions that have not been touched for a while.
//
// Session Identifiers:
//
// Generated IDs are the first 8 hex characters of a random UUID. Callers may
// also supply their own IDs; lookups ignore case.
//
// Concurrency:
//
// The Manager is safe for concurrent use. It only guards the session map; the
// rover service serializes work on the sessions themselves.
//
// Usage:
//
//	manager := session.NewManager()
//
//	grid, _ := engine.NewGrid(5, 5)
//	sess, err := manager.Create("", grid)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
