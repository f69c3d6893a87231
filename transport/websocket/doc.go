// Package websocket pushes live session updates to browser and tool clients.
//
// Architecture:
//
// A central Hub owns all connections, grouped by session ID. Each client has
// a read goroutine (which only keeps the connection alive) and a write
// goroutine fed by a buffered channel. Broadcasts are queued to the hub's
// event loop and never block the caller; a client that cannot keep up is
// dropped.
//
// Message Protocol:
//
// Every frame is one JSON Message:
//
//	{"session_id": "3f9a01bc", "event": "session_update", "session": {...}}
//
// A client receives a "snapshot" of its session right after connecting,
// then a "session_update" after every rover deployment or command sequence,
// and "session_closed" when the session is deleted.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), snapshot)
//	})
//
//	hub.BroadcastToSession(sessionID, info)
package websocket
