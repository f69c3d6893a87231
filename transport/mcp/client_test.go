package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/game/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"id":     "test-session",
		"width":  5,
		"height": 5,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != expectedResponse["id"] {
		t.Errorf("Expected id %v, got %v", expectedResponse["id"], response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "position occupied: (1, 3)",
			"kind":  engine.KindPositionOccupied,
		})
	}))
	defer server.Close()

	err := NewClient(server.URL).apiCall("POST", "/api/sessions/s/rovers", map[string]int{"x": 1}, nil)
	if err == nil {
		t.Fatal("Expected error for 422 response")
	}
	if err.Error() != "position occupied: (1, 3) (position_occupied)" {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["width"] != 5 || body["height"] != 4 {
			t.Errorf("Expected 5x4 body, got %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{ID: "test-session-123", Width: 5, Height: 4})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callRequest("create_session", map[string]interface{}{
		"width":  float64(5),
		"height": float64(4),
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if !strings.Contains(text, "0,0 to 5,4") {
		t.Errorf("Expected plateau bounds in result, got: %s", text)
	}

	// Fractional sizes never reach the API
	result, err = client.handleCreateSession(ctx, callRequest("create_session", map[string]interface{}{
		"width":  2.5,
		"height": float64(4),
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for fractional width")
	}
}

func TestClient_executeCommands(t *testing.T) {
	failedAt := 2
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s1/rovers/r1/commands" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		if body["commands"] == "RMM" {
			json.NewEncoder(w).Encode(service.CommandResult{
				Success:         false,
				Commands:        "RMM",
				ErrorKind:       engine.KindOutOfBounds,
				Error:           "position out of bounds",
				FailedAt:        &failedAt,
				FailedOperation: "M",
				FailedFrom:      &engine.Placement{X: 0, Y: 1, Direction: engine.West},
				RolledBack:      true,
				Rover:           service.RoverInfo{ID: "r1", Position: "1 1 S"},
			})
			return
		}
		json.NewEncoder(w).Encode(service.CommandResult{
			Success:  true,
			Recorded: true,
			Commands: body["commands"],
			Rover:    service.RoverInfo{ID: "r1", Position: "1 0 S", Finished: true},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleExecuteCommands(ctx, callRequest("execute_commands", map[string]interface{}{
		"session_id": "s1",
		"rover_id":   "r1",
		"commands":   "RMM",
		"intent":     "head west off the edge",
	}))
	if err != nil {
		t.Fatalf("executeCommands failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"✗ Commands", "out_of_bounds", "M at index 2 from 0 1 W", "rolled back to 1 1 S"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}

	result, err = client.handleExecuteCommands(ctx, callRequest("execute_commands", map[string]interface{}{
		"session_id": "s1",
		"rover_id":   "r1",
		"commands":   "M",
	}))
	if err != nil {
		t.Fatalf("executeCommands failed: %v", err)
	}
	text = resultText(t, result)
	if !strings.Contains(text, "✓ Commands") || !strings.Contains(text, "1 0 S") {
		t.Errorf("Unexpected result: %s", text)
	}
}

func TestClient_sessionReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.Report{SessionID: "s1", Lines: []string{"1 3 N", "5 1 E"}})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleSessionReport(context.Background(),
		callRequest("session_report", map[string]interface{}{"session_id": "s1"}))
	if err != nil {
		t.Fatalf("sessionReport failed: %v", err)
	}
	if text := resultText(t, result); text != "1 3 N\n5 1 E\n" {
		t.Errorf("Unexpected report: %q", text)
	}
}

func TestFormatPlateau(t *testing.T) {
	session := &service.SessionInfo{
		ID:     "s1",
		Width:  2,
		Height: 1,
		Rovers: []service.RoverInfo{
			{ID: "r1", X: 0, Y: 1, Direction: engine.North, Finished: true},
			{ID: "r2", X: 2, Y: 0, Direction: engine.West},
		},
		Occupied: []engine.OccupiedCell{{X: 0, Y: 1, Direction: engine.North}},
	}

	result := formatPlateau(session)

	expected := "Plateau:\n  1 ↑..\n  0 ..W\n"
	if !strings.HasPrefix(result, expected) {
		t.Errorf("Expected plateau to start with %q, got: %q", expected, result)
	}
}

func TestFormatPlateau_TooLarge(t *testing.T) {
	result := formatPlateau(&service.SessionInfo{Width: 100, Height: 3})
	if !strings.Contains(result, "too large") {
		t.Errorf("Expected size notice, got: %s", result)
	}
}

func TestFormatSessionInfo(t *testing.T) {
	session := &service.SessionInfo{
		ID:          "s1",
		MissionName: "classic",
		Width:       5,
		Height:      5,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Rovers: []service.RoverInfo{
			{ID: "r1", Position: "1 3 N", Initial: engine.Placement{X: 1, Y: 2, Direction: engine.North}, Finished: true, Attempts: 1},
		},
	}

	result := formatSessionInfo(session)

	for _, field := range []string{
		"Session: s1",
		"Mission: classic",
		"Plateau: 0,0 to 5,5",
		"r1: 1 3 N (reported, landed at 1 2 N, attempts 1)",
	} {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatMissionResult(t *testing.T) {
	final := engine.Placement{X: 1, Y: 3, Direction: engine.North}
	result := formatMissionResult(&service.MissionResult{
		Session: &service.SessionInfo{ID: "m1", MissionName: "classic"},
		Rovers: []service.MissionRoverResult{
			{Index: 0, Commands: "LMLMLMLMM", Deployed: true, Recorded: true, Final: &final},
			{Index: 1, Commands: "MMM", Deployed: true, ErrorKind: engine.KindOutOfBounds, Error: "position out of bounds"},
		},
		Report: []string{"1 3 N"},
	})

	for _, want := range []string{
		"Mission classic ran in session m1",
		`rover 1: "LMLMLMLMM" -> 1 3 N`,
		`rover 2: "MMM" failed (out_of_bounds)`,
		"1 of 2 rovers did not report",
		"Report:\n1 3 N\n",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in result, got: %s", want, result)
		}
	}
}

func TestClient_handleRoverInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleRoverInstructions(context.Background(), callRequest("rover_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleRoverInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{
		"Mars Rover Control - Complete Instructions",
		"PLATEAU:",
		"COMMANDS:",
		"FAILURES AND ROLLBACK:",
		"1 3 N",
		"5 1 E",
	} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, text)
		}
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"f":    float64(3),
		"frac": 1.5,
		"i":    4,
		"s":    "5",
	}

	if v, ok := intArg(args, "f"); !ok || v != 3 {
		t.Errorf("Expected 3, got %d (%v)", v, ok)
	}
	if _, ok := intArg(args, "frac"); ok {
		t.Error("Expected fractional value to be rejected")
	}
	if v, ok := intArg(args, "i"); !ok || v != 4 {
		t.Errorf("Expected 4, got %d (%v)", v, ok)
	}
	if _, ok := intArg(args, "s"); ok {
		t.Error("Expected string value to be rejected")
	}
	if _, ok := intArg(args, "missing"); ok {
		t.Error("Expected missing value to be rejected")
	}
}
