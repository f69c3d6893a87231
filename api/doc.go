// Package api provides the HTTP REST API for the Mars Rover simulation.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                 {"width":5,"height":5} -> 201 SessionInfo
//   - GET    /api/sessions                 ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Rovers:
//   - POST /api/sessions/{id}/rovers                    {"x":1,"y":2,"direction":"N"} -> 201 RoverInfo
//   - GET  /api/sessions/{id}/rovers/{rover}
//   - POST /api/sessions/{id}/rovers/{rover}/commands   {"commands":"LMLMLMLMM"} -> 200 CommandResult
//   - GET  /api/sessions/{id}/report                    ?format=text for one "x y D" per line
//
// Missions:
//   - GET  /api/missions
//   - POST /api/missions              MissionConfig body, saved under its name
//   - GET  /api/missions/{name}
//   - POST /api/missions/{name}/run   -> 201 MissionResult
//
// Other:
//   - GET /ws?session={id}   live session updates, see package websocket
//   - GET /metrics           Prometheus metrics
//   - GET /healthz
//
// A command sequence that fails is not an HTTP error: the rover was rolled
// back, so the response is 200 with success=false, the error kind and the
// index of the failing operation. The client may send new commands.
//
// Error Handling:
//
// Errors are returned as JSON. Engine validation errors carry a machine
// readable kind:
//
//	{"error": "position out of bounds: x=6, must be between 0 and 5", "kind": "out_of_bounds"}
//
// Status codes: 400 malformed body, 404 unknown session/rover/mission,
// 409 commands for a rover that already reported, 422 validation errors,
// 500 anything else.
package api
