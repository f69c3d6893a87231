package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/mars-rover/game/config"
	"github.com/wricardo/mars-rover/game/engine"
	"github.com/wricardo/mars-rover/game/service"
	"github.com/wricardo/mars-rover/game/session"
	"github.com/wricardo/mars-rover/observability"
	"github.com/wricardo/mars-rover/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.RoverService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(roverService service.RoverService, hub *websocket.Hub) *Server {
	observability.RegisterMetrics()

	s := &Server{
		service: roverService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(observability.RequestLogger(log.Logger))
	s.router.Use(observability.RequestMetricsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Rover operations
	api.HandleFunc("/sessions/{id}/rovers", s.handleDeployRover).Methods("POST")
	api.HandleFunc("/sessions/{id}/rovers/{rover}", s.handleGetRover).Methods("GET")
	api.HandleFunc("/sessions/{id}/rovers/{rover}/commands", s.handleExecuteCommands).Methods("POST")
	api.HandleFunc("/sessions/{id}/report", s.handleGetReport).Methods("GET")

	// Missions
	api.HandleFunc("/missions", s.handleListMissions).Methods("GET")
	api.HandleFunc("/missions", s.handleCreateMission).Methods("POST")
	api.HandleFunc("/missions/{name}", s.handleGetMission).Methods("GET")
	api.HandleFunc("/missions/{name}/run", s.handleRunMission).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error to its HTTP status. Engine errors
// carry their kind so clients can branch on it.
func respondServiceError(w http.ResponseWriter, err error) {
	body := map[string]string{"error": err.Error()}
	if kind := engine.ErrorKind(err); kind != "" {
		body["kind"] = kind
	}
	respondJSON(w, statusFor(err), body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, service.ErrRoverNotFound),
		errors.Is(err, config.ErrMissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRoverFinished):
		return http.StatusConflict
	case engine.IsValidationError(err), errors.Is(err, config.ErrInvalidMission):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// decodeBody decodes a JSON request body, rejecting unknown fields
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// broadcastSession pushes the latest snapshot of a session to its watchers
func (s *Server) broadcastSession(r *http.Request, sessionID string) {
	if s.hub == nil {
		return
	}
	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		return
	}
	s.hub.BroadcastToSession(info.ID, info)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  *int `json:"width"`
		Height *int `json:"height"`
	}

	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Width == nil || req.Height == nil {
		respondError(w, http.StatusBadRequest, "width and height are required")
		return
	}

	info, err := s.service.CreateSession(r.Context(), *req.Width, *req.Height)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	// Set defaults
	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventSessionClosed, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Rover Handlers

func (s *Server) handleDeployRover(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		X         *int   `json:"x"`
		Y         *int   `json:"y"`
		Direction string `json:"direction"`
	}

	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.X == nil || req.Y == nil || req.Direction == "" {
		respondError(w, http.StatusBadRequest, "x, y and direction are required")
		return
	}

	rover, err := s.service.DeployRover(r.Context(), sessionID, *req.X, *req.Y, req.Direction)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastSession(r, sessionID)
	respondJSON(w, http.StatusCreated, rover)
}

func (s *Server) handleGetRover(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	rover, err := s.service.GetRover(r.Context(), vars["id"], vars["rover"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rover)
}

func (s *Server) handleExecuteCommands(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	var req struct {
		Commands string `json:"commands"`
	}

	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.ExecuteCommands(r.Context(), sessionID, vars["rover"], req.Commands)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastSession(r, sessionID)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	report, err := s.service.GetReport(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		for _, line := range report.Lines {
			fmt.Fprintln(w, line)
		}
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Mission Handlers

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.service.ListMissions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if missions == nil {
		missions = []*service.MissionInfo{}
	}

	respondJSON(w, http.StatusOK, missions)
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	mission, err := s.service.LoadMission(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mission)
}

func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var mission engine.MissionConfig

	if err := decodeBody(r, &mission); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := strings.TrimSpace(mission.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "Mission name is required")
		return
	}

	if err := s.service.SaveMission(r.Context(), name, &mission); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Mission saved successfully",
		"mission_id": name,
	})
}

func (s *Server) handleRunMission(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := s.service.RunMission(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil && result.Session != nil {
		s.hub.BroadcastToSession(result.Session.ID, result.Session)
	}
	respondJSON(w, http.StatusCreated, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	s.hub.ServeWS(w, r, info.ID, info)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
