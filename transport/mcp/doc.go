// Package mcp exposes the rover REST API to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes one or two REST calls
// and the JSON response is rendered as text for the agent.
//
// MCP Tools:
//   - create_session: Create a plateau (width, height)
//   - list_sessions: List all active sessions
//   - get_session: Session details with an ASCII map of the plateau
//   - deploy_rover: Land a rover at x, y facing N/E/S/W
//   - execute_commands: Send an L/R/M command string to a rover
//   - session_report: Final positions, one "x y D" line per rover
//   - list_missions: List mission files
//   - run_mission: Run a mission in a new session
//   - rover_instructions: Rules and tips
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the main server answers JSON-RPC POSTs at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal().Err(err).Msg("mcp stdio")
//	}
package mcp
