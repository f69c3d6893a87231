package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/game/service"
)

// maxRenderedSide limits the ASCII plateau map; larger plateaus are listed only
const maxRenderedSide = 40

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Mars Rover Control",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Mars Rover Control - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Deploy rovers on a rectangular plateau and drive them with L, R and M
commands. Every rover that finishes its commands reports its final
position; that position becomes an obstacle for later rovers.

AVAILABLE TOOLS:
- create_session: Create a plateau with an upper-right corner (width, height)
- list_sessions: List all active sessions
- get_session: Show a session with its plateau map and rovers
- deploy_rover: Land a rover at x y facing N, E, S or W
- execute_commands: Send a command string (e.g. LMLMLMLMM) to a rover
- session_report: Final positions, one "x y D" line per rover
- list_missions: List mission files
- run_mission: Run a mission file in a fresh session
- rover_instructions: Full rules and tips

NOTE: A failed command sequence is rolled back to the rover's landing
position. Fix the commands and send them again to the same rover.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new plateau session. width and height are the upper-right corner; the lower-left is 0,0",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"width": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "Maximum x coordinate",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "Maximum y coordinate",
				},
			},
			Required: []string{"width", "height"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get a session with its rovers and a map of the plateau",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Rover operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "deploy_rover",
		Description: "Land a rover on the plateau. The cell must be inside the plateau and not hold a reported rover",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"N", "E", "S", "W"},
					"description": "Heading",
				},
			},
			Required: []string{"session_id", "x", "y", "direction"},
		},
	}, c.handleDeployRover)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "execute_commands",
		Description: "Send a command sequence to a rover. L/R spin 90 degrees, M moves one cell forward",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"rover_id": map[string]interface{}{
					"type":        "string",
					"description": "Rover ID returned by deploy_rover",
				},
				"commands": map[string]interface{}{
					"type":        "string",
					"pattern":     "^[LMRlmr]*$",
					"description": "Command string, e.g. LMLMLMLMM",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of where you expect the rover to end up (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "rover_id", "commands"},
		},
	}, c.handleExecuteCommands)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_report",
		Description: "Final positions of all rovers that reported, in reporting order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSessionReport)

	// Missions
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_missions",
		Description: "List available mission files",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMissions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_mission",
		Description: "Run a mission file in a new session and return its report",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mission": map[string]interface{}{
					"type":        "string",
					"description": "Mission ID from list_missions",
				},
			},
			Required: []string{"mission"},
		},
	}, c.handleRunMission)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rover_instructions",
		Description: "Get the complete rules for driving rovers",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRoverInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			if kind := errResp["kind"]; kind != "" {
				return fmt.Errorf("%s (%s)", msg, kind)
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func sessionPath(sessionID string, parts ...string) string {
	path := "/api/sessions/" + url.PathEscape(sessionID)
	for _, p := range parts {
		path += "/" + url.PathEscape(p)
	}
	return path
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	width, okW := intArg(args, "width")
	height, okH := intArg(args, "height")
	if !okW || !okH {
		return mcp.NewToolResultError("width and height must be whole numbers"), nil
	}

	body := map[string]int{"width": width, "height": height}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPlateau: 0,0 to %d,%d\n", session.ID, session.Width, session.Height)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&result, "- %s (Plateau: %dx%d, Rovers: %d, Reported: %d, Created: %s)",
			s.ID, s.Width, s.Height, len(s.Rovers), len(s.Occupied), s.CreatedAt.Format("15:04:05"))
		if s.MissionName != "" {
			fmt.Fprintf(&result, " [mission %s]", s.MissionName)
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	err := c.apiCall("GET", sessionPath(sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeployRover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := request.GetString("session_id", "")
	direction := request.GetString("direction", "")
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be whole numbers"), nil
	}

	body := map[string]interface{}{
		"x":         x,
		"y":         y,
		"direction": direction,
	}

	var rover service.RoverInfo
	err := c.apiCall("POST", sessionPath(sessionID, "rovers"), body, &rover)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Rover %s deployed at %s\nSend commands with execute_commands (rover_id=%s).",
		rover.ID, rover.Position, rover.ID)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleExecuteCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	roverID := request.GetString("rover_id", "")
	commands := request.GetString("commands", "")
	intent := request.GetString("intent", "")

	if intent != "" {
		log.Debug().Str("session", sessionID).Str("rover", roverID).Str("intent", intent).Msg("mcp command intent")
	}

	body := map[string]string{"commands": commands}

	var result service.CommandResult
	err := c.apiCall("POST", sessionPath(sessionID, "rovers", roverID, "commands"), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleSessionReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var report service.Report
	err := c.apiCall("GET", sessionPath(sessionID, "report"), nil, &report)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReport(report.Lines)), nil
}

func (c *Client) handleListMissions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var missions []service.MissionInfo
	err := c.apiCall("GET", "/api/missions", nil, &missions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Missions:\n\n")
	for _, m := range missions {
		fmt.Fprintf(&result, "• %s (%s)\n", m.MissionID, m.Filename)
		if m.Description != "" {
			fmt.Fprintf(&result, "  %s\n", m.Description)
		}
		fmt.Fprintf(&result, "  Plateau: %dx%d, Rovers: %d\n\n", m.Width, m.Height, m.Rovers)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleRunMission(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("mission", "")
	if name == "" {
		return mcp.NewToolResultError("mission is required"), nil
	}

	var result service.MissionResult
	err := c.apiCall("POST", "/api/missions/"+url.PathEscape(name)+"/run", nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMissionResult(&result)), nil
}

func (c *Client) handleRoverInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚀 Mars Rover Control - Complete Instructions

OBJECTIVE:
Land rovers on a rectangular plateau and drive them so they report
their final position without leaving the plateau or hitting each other.

PLATEAU:
• The lower-left corner is (0,0); the upper-right corner is (width,height)
• Both corners are inside the plateau
• Y grows to the North, X grows to the East

HEADINGS:
• N - North (y+1)
• E - East (x+1)
• S - South (y-1)
• W - West (x-1)

COMMANDS:
• L - spin 90 degrees left, stay in place
• R - spin 90 degrees right, stay in place
• M - move one cell forward in the current heading
Lowercase letters are accepted; anything else rejects the whole string
before the rover moves.

OBSTACLES:
• A rover that has reported its final position occupies that cell
• Rovers still being driven are not obstacles
• A move onto an occupied cell or off the plateau fails

FAILURES AND ROLLBACK:
• When a command fails, the rover returns to where it landed
• The response names the failing command and its index (zero based)
• Correct the command string and send it again to the same rover
• Once a rover reports, it cannot receive more commands

REPORT:
session_report lists every reported rover as "x y D", in the order they
reported. Example for the classic 5x5 mission:
  1 3 N
  5 1 E

STRATEGY TIPS:
• Trace the commands by hand before sending them; use the intent
  field to write down where you expect the rover to finish
• Check get_session for the plateau map before choosing a landing cell
• An empty command string reports the rover where it landed

Good luck exploring Mars!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var result strings.Builder
	fmt.Fprintf(&result, "Session: %s\n", session.ID)
	if session.MissionName != "" {
		fmt.Fprintf(&result, "Mission: %s\n", session.MissionName)
	}
	fmt.Fprintf(&result, "Plateau: 0,0 to %d,%d\n", session.Width, session.Height)
	fmt.Fprintf(&result, "Created: %s\n\n", session.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(session.Rovers) == 0 {
		result.WriteString("No rovers deployed.\n")
	} else {
		result.WriteString("Rovers:\n")
		for _, r := range session.Rovers {
			status := "active"
			if r.Finished {
				status = "reported"
			}
			fmt.Fprintf(&result, "  %s: %s (%s, landed at %s, attempts %d)\n",
				r.ID, r.Position, status, r.Initial, r.Attempts)
		}
	}

	result.WriteString("\n")
	result.WriteString(formatPlateau(session))
	return result.String()
}

// formatPlateau draws the plateau with north at the top. Reported rovers
// show their heading as an arrow, active rovers as their heading letter.
func formatPlateau(session *service.SessionInfo) string {
	if session.Width > maxRenderedSide || session.Height > maxRenderedSide {
		return fmt.Sprintf("Plateau too large to draw (%dx%d)\n", session.Width, session.Height)
	}

	cells := make(map[[2]int]string)
	for _, r := range session.Rovers {
		if !r.Finished {
			cells[[2]int{r.X, r.Y}] = string(r.Direction)
		}
	}
	for _, o := range session.Occupied {
		cells[[2]int{o.X, o.Y}] = arrowFor(o.Direction)
	}

	var result strings.Builder
	result.WriteString("Plateau:\n")
	for y := session.Height; y >= 0; y-- {
		fmt.Fprintf(&result, "%3d ", y)
		for x := 0; x <= session.Width; x++ {
			if c, ok := cells[[2]int{x, y}]; ok {
				result.WriteString(c)
			} else {
				result.WriteString(".")
			}
		}
		result.WriteString("\n")
	}
	result.WriteString("Legend: . empty, ↑→↓← reported rover, N/E/S/W active rover\n")
	return result.String()
}

func arrowFor(d engine.Direction) string {
	switch d {
	case engine.North:
		return "↑"
	case engine.East:
		return "→"
	case engine.South:
		return "↓"
	case engine.West:
		return "←"
	}
	return "?"
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Commands %q executed\n", result.Commands)
		fmt.Fprintf(&b, "Rover %s position: %s\n", result.Rover.ID, result.Rover.Position)
		if result.Recorded {
			b.WriteString("Final position reported; the cell is now an obstacle.\n")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "✗ Commands %q failed", result.Commands)
	if result.ErrorKind != "" {
		fmt.Fprintf(&b, " (%s)", result.ErrorKind)
	}
	b.WriteString("\n")
	if result.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", result.Error)
	}
	if result.FailedAt != nil {
		fmt.Fprintf(&b, "Failing command: %s at index %d", result.FailedOperation, *result.FailedAt)
		if result.FailedFrom != nil {
			fmt.Fprintf(&b, " from %s", result.FailedFrom)
		}
		b.WriteString("\n")
	}
	if result.RolledBack {
		fmt.Fprintf(&b, "Rover %s rolled back to %s. Send corrected commands to try again.\n",
			result.Rover.ID, result.Rover.Position)
	}
	return b.String()
}

func formatReport(lines []string) string {
	if len(lines) == 0 {
		return "No rover has reported yet.\n"
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatMissionResult(result *service.MissionResult) string {
	var b strings.Builder
	if result.Session != nil {
		fmt.Fprintf(&b, "Mission %s ran in session %s\n\n", result.Session.MissionName, result.Session.ID)
	}
	failed := 0
	for _, r := range result.Rovers {
		if r.Recorded && r.Final != nil {
			fmt.Fprintf(&b, "rover %d: %q -> %s\n", r.Index+1, r.Commands, r.Final)
			continue
		}
		failed++
		fmt.Fprintf(&b, "rover %d: %q failed", r.Index+1, r.Commands)
		if r.ErrorKind != "" {
			fmt.Fprintf(&b, " (%s)", r.ErrorKind)
		}
		if r.Error != "" {
			fmt.Fprintf(&b, ": %s", r.Error)
		}
		b.WriteString("\n")
	}
	if failed > 0 {
		fmt.Fprintf(&b, "\n⚠️  %d of %d rovers did not report\n", failed, len(result.Rovers))
	}
	b.WriteString("\nReport:\n")
	b.WriteString(formatReport(result.Report))
	return b.String()
}
