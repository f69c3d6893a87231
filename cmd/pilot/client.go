package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/game/service"
)

// APIError is a non-2xx response from the rover server
type APIError struct {
	Status  int
	Message string
	Kind    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Client drives one session of a remote rover server
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) UseSession(id string) {
	c.sessionID = id
}

func (c *Client) CreateSession(width, height int) (*service.SessionInfo, error) {
	var session service.SessionInfo
	body := map[string]int{"width": width, "height": height}
	if err := c.do("POST", "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetSession() (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do("GET", c.sessionPath(), nil, &session); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (c *Client) DeployRover(p engine.Placement) (*service.RoverInfo, error) {
	var rover service.RoverInfo
	body := map[string]interface{}{"x": p.X, "y": p.Y, "direction": p.Direction}
	if err := c.do("POST", c.sessionPath("rovers"), body, &rover); err != nil {
		return nil, fmt.Errorf("deploy rover: %w", err)
	}
	return &rover, nil
}

func (c *Client) ExecuteCommands(roverID, commands string) (*service.CommandResult, error) {
	var result service.CommandResult
	body := map[string]string{"commands": commands}
	if err := c.do("POST", c.sessionPath("rovers", roverID, "commands"), body, &result); err != nil {
		return nil, fmt.Errorf("execute commands: %w", err)
	}
	return &result, nil
}

func (c *Client) sessionPath(parts ...string) string {
	path := "/api/sessions/" + url.PathEscape(c.sessionID)
	for _, p := range parts {
		path += "/" + url.PathEscape(p)
	}
	return path
}

func (c *Client) do(method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var errResp map[string]string
		if json.Unmarshal(data, &errResp) == nil && errResp["error"] != "" {
			apiErr.Message = errResp["error"]
			apiErr.Kind = errResp["kind"]
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
